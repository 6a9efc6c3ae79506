package memdom

import "github.com/dshills/richfind/internal/dom"

// point is a validated position in the tree.
type point struct {
	node   *Node
	offset int
}

// comparePoints orders two points in document order.
// It returns -1, 0 or 1.
func comparePoints(a, b point) int {
	ka := append(a.node.path(), a.offset)
	kb := append(b.node.path(), b.offset)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		switch {
		case ka[i] < kb[i]:
			return -1
		case ka[i] > kb[i]:
			return 1
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// Range implements dom.Range over a Document.
type Range struct {
	doc      *Document
	start    point
	end      point
	hasStart bool
	hasEnd   bool
}

// Boundary returns the range as a boundary pair.
func (r *Range) Boundary() dom.Boundary {
	return dom.NewBoundary(handle(r.start.node), r.start.offset, handle(r.end.node), r.end.offset)
}

// SetStart implements dom.Range.
func (r *Range) SetStart(n dom.Node, offset int) error {
	p, err := r.doc.point(dom.Point{Node: n, Offset: offset})
	if err != nil {
		return err
	}
	r.start, r.hasStart = p, true
	if !r.hasEnd || comparePoints(r.end, p) < 0 {
		r.end, r.hasEnd = p, true
	}
	return nil
}

// SetEnd implements dom.Range.
func (r *Range) SetEnd(n dom.Node, offset int) error {
	p, err := r.doc.point(dom.Point{Node: n, Offset: offset})
	if err != nil {
		return err
	}
	r.end, r.hasEnd = p, true
	if !r.hasStart || comparePoints(r.start, p) > 0 {
		r.start, r.hasStart = p, true
	}
	return nil
}

// revalidate re-checks both ends against the live tree.
func (r *Range) revalidate() (point, point, error) {
	if !r.hasStart || !r.hasEnd {
		return point{}, point{}, dom.ErrInvalidRange
	}
	start, err := r.doc.point(dom.Point{Node: r.start.node, Offset: r.start.offset})
	if err != nil {
		return point{}, point{}, err
	}
	end, err := r.doc.point(dom.Point{Node: r.end.node, Offset: r.end.offset})
	if err != nil {
		return point{}, point{}, err
	}
	return start, end, nil
}

// DeleteContents implements dom.Range. Nodes fully inside the range are
// removed; text leaves holding the start or end are truncated.
func (r *Range) DeleteContents() error {
	start, end, err := r.revalidate()
	if err != nil {
		return err
	}
	if comparePoints(start, end) >= 0 {
		return nil
	}

	if start.node == end.node && start.node.kind == KindText {
		n := start.node
		n.data = n.data[:start.offset] + n.data[end.offset:]
		r.end = r.start
		return nil
	}

	var doomed []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for i, c := range n.children {
			before := point{n, i}
			after := point{n, i + 1}
			if comparePoints(before, start) >= 0 && comparePoints(after, end) <= 0 {
				doomed = append(doomed, c)
				continue
			}
			walk(c)
		}
	}
	walk(r.doc.root)

	for _, n := range doomed {
		n.detach()
	}
	if start.node.kind == KindText {
		start.node.data = start.node.data[:start.offset]
	}
	if end.node.kind == KindText {
		end.node.data = end.node.data[end.offset:]
	}
	r.end = r.start
	return nil
}

// InsertNode implements dom.Range.
func (r *Range) InsertNode(n dom.Node) error {
	x := asNode(n)
	if x == nil {
		return dom.ErrInvalidNode
	}
	start, _, err := r.revalidate()
	if err != nil {
		return err
	}
	for cur := start.node; cur != nil; cur = cur.parent {
		if cur == x {
			return dom.ErrInvalidNode
		}
	}

	sc := start.node
	if sc.kind != KindText {
		sc.insertAt(start.offset, x)
		return nil
	}

	parent := sc.parent
	i := sc.index()
	suffix := sc.data[start.offset:]
	sc.data = sc.data[:start.offset]
	parent.insertAt(i+1, x)
	if suffix != "" {
		parent.insertAt(i+2, Text(suffix))
	}
	return nil
}
