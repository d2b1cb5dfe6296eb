package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// LoadYAML reads a single-file dataset:
//
//	people: [{id, name, birth}]
//	movies: [{id, title, year}]
//	stars:  [{person_id, movie_id}]
func LoadYAML(path string) (*Dataset, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from config/flag
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parseYAML(data, path)
}

func parseYAML(data []byte, path string) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &ds, nil
}
