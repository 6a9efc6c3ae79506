package dom

import "fmt"

// Point is a position inside the tree: a node and an offset within it.
type Point struct {
	Node   Node
	Offset int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("%v@%d", p.Node, p.Offset)
}

// Boundary is a start/end pair of points. A match boundary may start and
// end in different leaves.
type Boundary struct {
	Start Point
	End   Point
}

// NewBoundary creates a boundary from two node/offset pairs.
func NewBoundary(startNode Node, startOffset int, endNode Node, endOffset int) Boundary {
	return Boundary{
		Start: Point{Node: startNode, Offset: startOffset},
		End:   Point{Node: endNode, Offset: endOffset},
	}
}

// Equal reports exact node-and-offset equality of both ends.
func (b Boundary) Equal(other Boundary) bool {
	return b.Start == other.Start && b.End == other.End
}

// Spans reports whether the boundary starts and ends in different nodes.
func (b Boundary) Spans() bool {
	return b.Start.Node != b.End.Node
}

// String returns a human-readable representation of the boundary.
func (b Boundary) String() string {
	return fmt.Sprintf("[%s, %s)", b.Start, b.End)
}

// Apply positions r on the boundary.
func (b Boundary) Apply(r Range) error {
	if err := r.SetStart(b.Start.Node, b.Start.Offset); err != nil {
		return fmt.Errorf("set start: %w", err)
	}
	if err := r.SetEnd(b.End.Node, b.End.Offset); err != nil {
		return fmt.Errorf("set end: %w", err)
	}
	return nil
}
