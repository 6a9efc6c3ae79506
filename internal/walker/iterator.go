package walker

import "github.com/dshills/richfind/internal/dom"

// Kind tags the outcome of one iteration step.
type Kind int

const (
	// KindVisiting carries the next node in document order.
	KindVisiting Kind = iota
	// KindEnded means the subtree is exhausted.
	KindEnded
	// KindBroken means the traversal was canceled.
	KindBroken
	// KindSkipped carries a node the filter rejected.
	KindSkipped
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindVisiting:
		return "visiting"
	case KindEnded:
		return "ended"
	case KindBroken:
		return "broken"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step is the result of Iterator.Next or Iterator.Advance.
type Step struct {
	Kind Kind
	Node dom.Node
}

// Iterator walks the descendants of a root in pre-order. The root itself is
// not visited. Once Ended or Broken is returned, every later call returns
// the same terminal step.
type Iterator struct {
	tree   dom.Tree
	root   dom.Node
	next   dom.Node
	filter func(dom.Node) bool
	state  Kind
	done   bool
}

// NewIterator creates an iterator over root. A nil filter visits every node.
func NewIterator(t dom.Tree, root dom.Node, filter func(dom.Node) bool) *Iterator {
	it := &Iterator{
		tree:   t,
		root:   root,
		filter: filter,
	}
	if root != nil {
		it.next = t.FirstChild(root)
	}
	return it
}

// Next advances to the next node the filter accepts.
func (it *Iterator) Next() Step {
	for {
		if st := it.Advance(); st.Kind != KindSkipped {
			return st
		}
	}
}

// Advance moves past exactly one node. Nodes rejected by the filter come
// back as KindSkipped so callers can account for them.
func (it *Iterator) Advance() Step {
	if it.done {
		return Step{Kind: it.state}
	}
	if it.next == nil {
		it.done, it.state = true, KindEnded
		return Step{Kind: KindEnded}
	}
	n := it.next
	it.next = dom.NextInOrder(it.tree, n, it.root)
	if it.filter != nil && !it.filter(n) {
		return Step{Kind: KindSkipped, Node: n}
	}
	return Step{Kind: KindVisiting, Node: n}
}

// Break cancels the traversal. It is a no-op once the iterator is done.
func (it *Iterator) Break() {
	if it.done {
		return
	}
	it.done, it.state, it.next = true, KindBroken, nil
}

// Done reports whether a terminal step has been reached.
func (it *Iterator) Done() bool {
	return it.done
}
