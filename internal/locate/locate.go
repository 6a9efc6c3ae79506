// Package locate finds query occurrences in text scattered across many
// document leaves.
//
// A Locator receives leaf fragments in document order and concatenates them
// into one virtual text while recording, for each fragment, where it starts
// in that text. Matches are searched in the virtual text, so an occurrence
// may straddle several leaves, and each match is translated back into leaf
// coordinates.
package locate

import (
	"strings"

	"github.com/dshills/richfind/internal/dom"
)

// span maps a leaf to its slice of the virtual text.
type span struct {
	node   dom.Node
	start  int
	length int
}

// Locator accumulates leaf text for one search pass.
// A Locator is not safe for concurrent use.
type Locator struct {
	buf    strings.Builder
	spans  []span
	leaves int
}

// New creates an empty Locator.
func New() *Locator {
	return &Locator{}
}

// Add appends a leaf's text to the virtual text. Leaves must be added in
// document order.
func (l *Locator) Add(node dom.Node, text string) {
	l.leaves++
	if text == "" {
		return
	}
	l.spans = append(l.spans, span{
		node:   node,
		start:  l.buf.Len(),
		length: len(text),
	})
	l.buf.WriteString(text)
}

// Len returns the virtual text length in bytes.
func (l *Locator) Len() int { return l.buf.Len() }

// Leaves returns the number of leaves added, including empty ones.
func (l *Locator) Leaves() int { return l.leaves }

// Locate returns every non-overlapping occurrence of query, left to right.
// After a match the scan resumes at its end. An empty query matches nothing.
func (l *Locator) Locate(query string) []dom.Boundary {
	if query == "" || len(l.spans) == 0 {
		return nil
	}
	text := l.buf.String()
	c := cursor{spans: l.spans}

	var out []dom.Boundary
	for from := 0; from+len(query) <= len(text); {
		i := strings.Index(text[from:], query)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(query)

		sn, so := c.seek(start)
		en, eo := c.seek(end - 1)
		out = append(out, dom.NewBoundary(sn, so, en, eo+1))
		from = end
	}
	return out
}

// cursor translates monotonically increasing offsets in amortized O(1).
type cursor struct {
	spans []span
	i     int
}

func (c *cursor) seek(offset int) (dom.Node, int) {
	for c.spans[c.i].start+c.spans[c.i].length <= offset {
		c.i++
	}
	s := c.spans[c.i]
	return s.node, offset - s.start
}
