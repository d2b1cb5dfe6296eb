package search

import "errors"

// ErrEmptyFrontier is returned by RemoveFirst on an empty frontier.
var ErrEmptyFrontier = errors.New("empty frontier")

// Frontier is a FIFO queue of nodes waiting to be expanded.
// Removal order equals insertion order; BFS depends on it.
type Frontier struct {
	nodes []*Node
	head  int
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Add appends n to the back of the queue.
func (f *Frontier) Add(n *Node) {
	f.nodes = append(f.nodes, n)
}

// RemoveFirst pops the oldest node.
func (f *Frontier) RemoveFirst() (*Node, error) {
	if f.Empty() {
		return nil, ErrEmptyFrontier
	}
	n := f.nodes[f.head]
	f.nodes[f.head] = nil
	f.head++

	// Reclaim the backing array once the consumed prefix dominates.
	if f.head == len(f.nodes) {
		f.nodes = f.nodes[:0]
		f.head = 0
	} else if f.head > 1024 && f.head*2 > len(f.nodes) {
		f.nodes = append([]*Node(nil), f.nodes[f.head:]...)
		f.head = 0
	}
	return n, nil
}

// Empty reports whether no nodes are waiting.
func (f *Frontier) Empty() bool {
	return f.head >= len(f.nodes)
}

// Len returns the number of nodes waiting.
func (f *Frontier) Len() int {
	return len(f.nodes) - f.head
}
