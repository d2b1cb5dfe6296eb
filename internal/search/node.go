package search

// Parent records where a Node was reached from: either the search source
// itself (Root) or an earlier Node (Step). Exactly one of the two is set.
type Parent struct {
	source string
	node   *Node
}

// Root returns the parent of a Node discovered directly from source.
func Root(source string) Parent {
	return Parent{source: source}
}

// Step returns the parent of a Node discovered while expanding n.
func Step(n *Node) Parent {
	return Parent{node: n}
}

// Node returns the parent Node, or false when the parent is the root.
func (p Parent) Node() (*Node, bool) {
	return p.node, p.node != nil
}

// Source returns the source person id when the parent is the root.
func (p Parent) Source() (string, bool) {
	return p.source, p.node == nil
}

// Node is one discovered step of a path: person state reached via the
// movie action from parent. Nodes are immutable once created.
type Node struct {
	state  string
	action string
	parent Parent
}

// NewNode creates a Node reaching state via action from parent.
func NewNode(state, action string, parent Parent) *Node {
	return &Node{state: state, action: action, parent: parent}
}

// State returns the person id this node represents.
func (n *Node) State() string { return n.state }

// Action returns the movie id connecting this node to its parent.
func (n *Node) Action() string { return n.action }

// Parent returns where this node was reached from.
func (n *Node) Parent() Parent { return n.parent }
