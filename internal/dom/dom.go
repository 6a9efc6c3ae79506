package dom

// Node is an opaque handle to a host node. Handles must be comparable and
// two handles refer to the same node iff they are equal.
type Node any

// Tree is the host document capability set.
type Tree interface {
	// IsText reports whether n is a text leaf.
	IsText(n Node) bool
	// IsElement reports whether n is an element (a container).
	IsElement(n Node) bool
	// Text returns the text held by a text leaf, or "" for other nodes.
	Text(n Node) string

	Parent(n Node) Node
	FirstChild(n Node) Node
	NextSibling(n Node) Node
	PrevSibling(n Node) Node

	// CreateText creates a detached text leaf.
	CreateText(data string) Node
	// NewRange creates an unpositioned range over this tree.
	NewRange() Range
}

// Range is a mutable DOM-style range.
type Range interface {
	SetStart(n Node, offset int) error
	SetEnd(n Node, offset int) error
	// DeleteContents removes everything between start and end and
	// collapses the range to its start.
	DeleteContents() error
	// InsertNode inserts n at the range start, splitting a text leaf
	// when the start lies inside one.
	InsertNode(n Node) error
}

// Selection is the host's current selection.
type Selection interface {
	// Current returns the selection as a boundary pair. ok is false when
	// nothing is selected.
	Current() (b Boundary, ok bool)
	// SelectRange makes r the selection.
	SelectRange(r Range) error
	// SelectNode selects exactly the given node.
	SelectNode(n Node) error
	// RemoveMarkers removes transient selection markers from the document.
	RemoveMarkers()
}

// Scroller scrolls a node into view.
type Scroller interface {
	ScrollIntoView(n Node)
}

// NextInOrder returns the pre-order successor of n inside root, or nil once
// the subtree is exhausted. root itself is never returned.
func NextInOrder(t Tree, n, root Node) Node {
	if n == nil {
		return nil
	}
	if c := t.FirstChild(n); c != nil {
		return c
	}
	for cur := n; cur != nil && cur != root; cur = t.Parent(cur) {
		if s := t.NextSibling(cur); s != nil {
			return s
		}
	}
	return nil
}

// Closest returns the nearest node matching pred, starting with n itself
// and walking up through its ancestors. The walk stops before root; nil is
// returned when nothing matches.
func Closest(t Tree, n Node, pred func(Node) bool, root Node) Node {
	for cur := n; cur != nil && cur != root; cur = t.Parent(cur) {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Prev returns the nearest node preceding n in document order that matches
// pred, skipping n's ancestors. The search never leaves root.
func Prev(t Tree, n Node, pred func(Node) bool, root Node) Node {
	for cur := n; cur != nil && cur != root; cur = t.Parent(cur) {
		for sib := t.PrevSibling(cur); sib != nil; sib = t.PrevSibling(sib) {
			if m := lastMatch(t, sib, pred); m != nil {
				return m
			}
		}
	}
	return nil
}

// lastMatch searches the subtree of n in reverse document order.
func lastMatch(t Tree, n Node, pred func(Node) bool) Node {
	var last Node
	for c := t.FirstChild(n); c != nil; c = t.NextSibling(c) {
		last = c
	}
	for c := last; c != nil; c = t.PrevSibling(c) {
		if m := lastMatch(t, c, pred); m != nil {
			return m
		}
	}
	if pred(n) {
		return n
	}
	return nil
}
