// Package memdom is an in-memory document tree implementing the dom
// capability set.
//
// It models just enough of the DOM for search and replace: elements with
// ordered children, text leaves, ranges with DeleteContents/InsertNode
// semantics, a selection and a scroll recorder.
package memdom

import (
	"fmt"
	"strings"
)

// Kind distinguishes elements from text leaves.
type Kind int

const (
	// KindElement is a container node.
	KindElement Kind = iota
	// KindText is a text leaf.
	KindText
)

// Node is a node of an in-memory document.
type Node struct {
	kind     Kind
	tag      string
	data     string
	parent   *Node
	children []*Node
	// idx is n's position in parent.children.
	idx int
}

// Element creates a detached element with the given children.
func Element(tag string, children ...*Node) *Node {
	n := &Node{kind: KindElement, tag: tag}
	for _, c := range children {
		n.appendChild(c)
	}
	return n
}

// Text creates a detached text leaf.
func Text(data string) *Node {
	return &Node{kind: KindText, data: data}
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag, or "#text".
func (n *Node) Tag() string {
	if n.kind == KindText {
		return "#text"
	}
	return n.tag
}

// Data returns the text of a text leaf.
func (n *Node) Data() string { return n.data }

// SetData replaces the text of a text leaf.
func (n *Node) SetData(s string) { n.data = s }

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Append appends children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		n.appendChild(c)
	}
	return n
}

// String returns a short description used in test failures.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind == KindText {
		return fmt.Sprintf("#text(%q)", n.data)
	}
	return "<" + n.tag + ">"
}

// length is the DOM node length: bytes for text, children for elements.
func (n *Node) length() int {
	if n.kind == KindText {
		return len(n.data)
	}
	return len(n.children)
}

func (n *Node) index() int {
	if n.parent == nil {
		return -1
	}
	return n.idx
}

func (n *Node) appendChild(c *Node) {
	c.detach()
	c.parent = n
	c.idx = len(n.children)
	n.children = append(n.children, c)
}

func (n *Node) insertAt(i int, c *Node) {
	c.detach()
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	n.renumber(i)
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	i := n.idx
	p.children = append(p.children[:i], p.children[i+1:]...)
	p.renumber(i)
	n.parent = nil
}

// renumber refreshes the cached positions of children from i on.
func (n *Node) renumber(i int) {
	for ; i < len(n.children); i++ {
		n.children[i].idx = i
	}
}

// path returns the child indices leading from the topmost ancestor to n.
func (n *Node) path() []int {
	var rev []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		rev = append(rev, cur.index())
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// dump writes an indented outline, used by Document.Dump.
func (n *Node) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.String())
	b.WriteByte('\n')
	for _, c := range n.children {
		c.dump(b, depth+1)
	}
}
