package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matijazezelj/degrees/internal/graph"
)

var errPersonNotFound = errors.New("person not found")

// prompter reads answers line by line from an interactive input.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the trimmed line typed in response. A final
// line without a newline is accepted.
func (p *prompter) ask(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// personIDForName resolves name to a single person id, asking which one
// was meant when several people share the name.
func personIDForName(store graph.Store, p *prompter, name string) (string, error) {
	ids := store.ResolveName(name)
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %q", errPersonNotFound, name)
	case 1:
		return ids[0], nil
	}

	_, _ = fmt.Fprintf(p.out, "Which '%s'?\n", name)
	for _, id := range ids {
		person, _ := store.Person(id)
		_, _ = fmt.Fprintf(p.out, "ID: %s, Name: %s, Birth: %s\n", person.ID, person.Name, yearString(person.Birth))
	}

	answer, err := p.ask("Intended Person ID: ")
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		if id == answer {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not one of the listed ids", errPersonNotFound, answer)
}
