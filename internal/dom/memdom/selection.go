package memdom

import "github.com/dshills/richfind/internal/dom"

// Selection implements dom.Selection for a Document.
type Selection struct {
	doc            *Document
	cur            dom.Boundary
	has            bool
	markersRemoved int
}

// Current implements dom.Selection.
func (s *Selection) Current() (dom.Boundary, bool) {
	return s.cur, s.has
}

// Set places the selection without validation.
func (s *Selection) Set(b dom.Boundary) {
	s.cur, s.has = b, true
}

// Clear removes the selection.
func (s *Selection) Clear() {
	s.cur, s.has = dom.Boundary{}, false
}

// SelectRange implements dom.Selection.
func (s *Selection) SelectRange(r dom.Range) error {
	rr, ok := r.(*Range)
	if !ok || rr.doc != s.doc {
		return dom.ErrInvalidRange
	}
	if _, _, err := rr.revalidate(); err != nil {
		return err
	}
	s.Set(rr.Boundary())
	return nil
}

// SelectNode implements dom.Selection. A text leaf is selected from its
// first to its last byte; an element is selected within its parent.
func (s *Selection) SelectNode(n dom.Node) error {
	x := asNode(n)
	if x == nil {
		return dom.ErrInvalidNode
	}
	if !s.doc.Attached(x) {
		return dom.ErrDetached
	}
	if x.kind == KindText {
		s.Set(dom.NewBoundary(x, 0, x, len(x.data)))
		return nil
	}
	if x.parent == nil {
		s.Set(dom.NewBoundary(x, 0, x, len(x.children)))
		return nil
	}
	i := x.index()
	s.Set(dom.NewBoundary(x.parent, i, x.parent, i+1))
	return nil
}

// RemoveMarkers implements dom.Selection.
func (s *Selection) RemoveMarkers() {
	s.markersRemoved++
}

// MarkersRemoved returns how many times RemoveMarkers was called.
func (s *Selection) MarkersRemoved() int {
	return s.markersRemoved
}
