package memdom

import (
	"strings"

	"github.com/dshills/richfind/internal/dom"
)

// Document is an in-memory document rooted at an editable element.
// Document implements dom.Tree and dom.Scroller.
type Document struct {
	root     *Node
	sel      *Selection
	scrolled []*Node
}

// NewDocument creates a document whose root element holds children.
func NewDocument(children ...*Node) *Document {
	d := &Document{root: Element("body", children...)}
	d.sel = &Selection{doc: d}
	return d
}

// Root returns the editable root element.
func (d *Document) Root() *Node { return d.root }

// Selection returns the document selection.
func (d *Document) Selection() *Selection { return d.sel }

// Attached reports whether n is reachable from the root.
func (d *Document) Attached(n *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// Remove detaches n from the document.
func (d *Document) Remove(n *Node) {
	n.detach()
}

// Texts returns the text of every leaf in document order.
func (d *Document) Texts() []string {
	var out []string
	d.eachText(func(n *Node) {
		out = append(out, n.data)
	})
	return out
}

// Content returns the concatenated text of all leaves.
func (d *Document) Content() string {
	return strings.Join(d.Texts(), "")
}

// Dump returns an indented outline of the tree.
func (d *Document) Dump() string {
	var b strings.Builder
	d.root.dump(&b, 0)
	return b.String()
}

// Scrolled returns the nodes passed to ScrollIntoView, oldest first.
func (d *Document) Scrolled() []*Node {
	return d.scrolled
}

// ScrollIntoView records n.
func (d *Document) ScrollIntoView(n dom.Node) {
	if x := asNode(n); x != nil {
		d.scrolled = append(d.scrolled, x)
	}
}

// TextBetween returns the leaf text covered by b.
func (d *Document) TextBetween(b dom.Boundary) (string, error) {
	start, err := d.point(b.Start)
	if err != nil {
		return "", err
	}
	end, err := d.point(b.End)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	d.eachText(func(n *Node) {
		lo, hi := 0, len(n.data)
		if comparePoints(point{n, hi}, start) <= 0 || comparePoints(point{n, lo}, end) >= 0 {
			return
		}
		if start.node == n {
			lo = start.offset
		}
		if end.node == n {
			hi = end.offset
		}
		sb.WriteString(n.data[lo:hi])
	})
	return sb.String(), nil
}

func (d *Document) eachText(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		if n.kind == KindText {
			fn(n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.root)
}

// point validates a dom.Point against the live tree.
func (d *Document) point(p dom.Point) (point, error) {
	n := asNode(p.Node)
	if n == nil {
		return point{}, dom.ErrInvalidNode
	}
	if !d.Attached(n) {
		return point{}, dom.ErrDetached
	}
	if p.Offset < 0 || p.Offset > n.length() {
		return point{}, dom.ErrIndexSize
	}
	return point{n, p.Offset}, nil
}

// asNode converts a handle, returning nil for foreign or nil handles.
func asNode(n dom.Node) *Node {
	x, _ := n.(*Node)
	return x
}

// handle converts back to a dom.Node without producing a typed nil.
func handle(n *Node) dom.Node {
	if n == nil {
		return nil
	}
	return n
}

// dom.Tree

// IsText implements dom.Tree.
func (d *Document) IsText(n dom.Node) bool {
	x := asNode(n)
	return x != nil && x.kind == KindText
}

// IsElement implements dom.Tree.
func (d *Document) IsElement(n dom.Node) bool {
	x := asNode(n)
	return x != nil && x.kind == KindElement
}

// Text implements dom.Tree.
func (d *Document) Text(n dom.Node) string {
	if x := asNode(n); x != nil && x.kind == KindText {
		return x.data
	}
	return ""
}

// Parent implements dom.Tree.
func (d *Document) Parent(n dom.Node) dom.Node {
	if x := asNode(n); x != nil {
		return handle(x.parent)
	}
	return nil
}

// FirstChild implements dom.Tree.
func (d *Document) FirstChild(n dom.Node) dom.Node {
	x := asNode(n)
	if x == nil || len(x.children) == 0 {
		return nil
	}
	return x.children[0]
}

// NextSibling implements dom.Tree.
func (d *Document) NextSibling(n dom.Node) dom.Node {
	x := asNode(n)
	if x == nil || x.parent == nil {
		return nil
	}
	i := x.index()
	if i+1 >= len(x.parent.children) {
		return nil
	}
	return x.parent.children[i+1]
}

// PrevSibling implements dom.Tree.
func (d *Document) PrevSibling(n dom.Node) dom.Node {
	x := asNode(n)
	if x == nil || x.parent == nil {
		return nil
	}
	i := x.index()
	if i <= 0 {
		return nil
	}
	return x.parent.children[i-1]
}

// CreateText implements dom.Tree.
func (d *Document) CreateText(data string) dom.Node {
	return Text(data)
}

// NewRange implements dom.Tree.
func (d *Document) NewRange() dom.Range {
	return &Range{doc: d}
}
