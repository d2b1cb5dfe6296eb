package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/matijazezelj/degrees/pkg/models"
)

// ErrUnknownPerson is returned when a source or target id is not in the graph.
var ErrUnknownPerson = errors.New("unknown person")

// Graph is the read-only view of the co-starring graph the search needs.
type Graph interface {
	// HasPerson reports whether id is a known person.
	HasPerson(id string) bool

	// Neighbors returns one (movie, person) pair per co-star of id across
	// all of id's movies. The list may include id itself.
	Neighbors(id string) []models.Neighbor
}

// Result is the outcome of a shortest-path search.
type Result struct {
	Path  models.Path `json:"path"`
	Found bool        `json:"found"`

	// Expanded counts nodes removed from the frontier.
	Expanded int `json:"expanded"`
	// Enqueued counts nodes added to the frontier.
	Enqueued int `json:"enqueued"`
}

// ShortestPath finds a minimum-length chain of shared movies from source
// to target using breadth-first search. A disconnected pair yields a
// Result with Found == false and a nil error.
func ShortestPath(ctx context.Context, g Graph, source, target string) (Result, error) {
	if !g.HasPerson(source) {
		return Result{}, fmt.Errorf("source %q: %w", source, ErrUnknownPerson)
	}
	if !g.HasPerson(target) {
		return Result{}, fmt.Errorf("target %q: %w", target, ErrUnknownPerson)
	}

	res := Result{Path: models.Path{Source: source, Target: target}}
	if source == target {
		res.Found = true
		res.Path.Steps = []models.Step{}
		return res, nil
	}

	frontier := NewFrontier()
	visited := NewVisited(source)

	// expand enqueues every unvisited co-star of state and returns the
	// node for target if it was among them.
	expand := func(state string, parent Parent) *Node {
		for _, nb := range g.Neighbors(state) {
			if !visited.Add(nb.PersonID) {
				continue
			}
			child := NewNode(nb.PersonID, nb.MovieID, parent)
			frontier.Add(child)
			res.Enqueued++
			if child.State() == target {
				return child
			}
		}
		return nil
	}

	found := expand(source, Root(source))
	for found == nil && !frontier.Empty() {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("searching %s -> %s: %w", source, target, err)
		}
		node, err := frontier.RemoveFirst()
		if err != nil {
			return res, err
		}
		res.Expanded++
		found = expand(node.State(), Step(node))
	}

	if found == nil {
		return res, nil
	}
	res.Found = true
	res.Path.Steps = Reconstruct(found)
	return res, nil
}

// Reconstruct walks the parent chain from n back to the root node and
// returns the steps in source-to-n order.
func Reconstruct(n *Node) []models.Step {
	var depth int
	for cur := n; ; depth++ {
		parent, ok := cur.Parent().Node()
		if !ok {
			break
		}
		cur = parent
	}

	steps := make([]models.Step, depth+1)
	cur := n
	for i := depth; i >= 0; i-- {
		steps[i] = models.Step{MovieID: cur.Action(), PersonID: cur.State()}
		if parent, ok := cur.Parent().Node(); ok {
			cur = parent
		}
	}
	return steps
}
