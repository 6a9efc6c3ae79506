package memdom

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/richfind/internal/dom"
)

func TestDocumentTree(t *testing.T) {
	a := Text("a")
	p := Element("p", a, Element("br"))
	doc := NewDocument(p)

	if !doc.IsText(a) || doc.IsElement(a) {
		t.Error("text leaf misclassified")
	}
	if !doc.IsElement(p) || doc.IsText(p) {
		t.Error("element misclassified")
	}
	if doc.IsText(nil) || doc.IsElement("foreign") {
		t.Error("foreign handles classified")
	}
	if doc.Text(p) != "" || doc.Text(a) != "a" {
		t.Error("Text() wrong")
	}
	if doc.Parent(doc.Root()) != nil {
		t.Error("root has a parent")
	}
	if doc.PrevSibling(a) != nil || doc.NextSibling(p) != nil {
		t.Error("unexpected sibling")
	}
	if doc.FirstChild(a) != nil {
		t.Error("text leaf has a child")
	}
}

func TestTextsAndDump(t *testing.T) {
	doc := NewDocument(Element("p", Text("one"), Element("b", Text("two"))), Text("three"))

	if diff := cmp.Diff([]string{"one", "two", "three"}, doc.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
	want := "<body>\n  <p>\n    #text(\"one\")\n    <b>\n      #text(\"two\")\n  #text(\"three\")\n"
	if got := doc.Dump(); got != want {
		t.Errorf("Dump() =\n%s\nwant\n%s", got, want)
	}
}

func TestRangeSetCollapses(t *testing.T) {
	a := Text("hello")
	b := Text("world")
	doc := NewDocument(a, b)

	r := doc.NewRange().(*Range)
	if err := r.SetStart(b, 2); err != nil {
		t.Fatal(err)
	}
	if got := r.Boundary(); !got.Equal(dom.NewBoundary(b, 2, b, 2)) {
		t.Errorf("after SetStart = %v, want collapsed", got)
	}
	if err := r.SetEnd(a, 1); err != nil {
		t.Fatal(err)
	}
	if got := r.Boundary(); !got.Equal(dom.NewBoundary(a, 1, a, 1)) {
		t.Errorf("end before start = %v, want collapsed to end", got)
	}
}

func TestRangeErrors(t *testing.T) {
	a := Text("abc")
	doc := NewDocument(a)

	tests := []struct {
		name string
		node dom.Node
		off  int
		want error
	}{
		{"nil", nil, 0, dom.ErrInvalidNode},
		{"detached", Text("x"), 0, dom.ErrDetached},
		{"negative", a, -1, dom.ErrIndexSize},
		{"past end", a, 4, dom.ErrIndexSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := doc.NewRange().SetStart(tt.node, tt.off); !errors.Is(err, tt.want) {
				t.Errorf("SetStart() error = %v, want %v", err, tt.want)
			}
		})
	}
	if err := doc.NewRange().DeleteContents(); !errors.Is(err, dom.ErrInvalidRange) {
		t.Errorf("DeleteContents() on unset range error = %v", err)
	}
}

func TestDeleteContentsWithinLeaf(t *testing.T) {
	a := Text("hello world")
	doc := NewDocument(a)

	r := doc.NewRange()
	_ = r.SetStart(a, 5)
	_ = r.SetEnd(a, 11)
	if err := r.DeleteContents(); err != nil {
		t.Fatalf("DeleteContents() error = %v", err)
	}
	if got := doc.Content(); got != "hello" {
		t.Errorf("Content() = %q, want %q", got, "hello")
	}
	if got := r.(*Range).Boundary(); !got.Equal(dom.NewBoundary(a, 5, a, 5)) {
		t.Errorf("range = %v, want collapsed at start", got)
	}
}

func TestDeleteContentsAcrossLeaves(t *testing.T) {
	first := Text("abc")
	middle := Element("b", Text("MID"))
	last := Text("xyz")
	p := Element("p", first, middle)
	doc := NewDocument(p, Element("p", last))

	r := doc.NewRange()
	_ = r.SetStart(first, 1)
	_ = r.SetEnd(last, 2)
	if err := r.DeleteContents(); err != nil {
		t.Fatalf("DeleteContents() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "z"}, doc.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
	if doc.Attached(middle) {
		t.Error("fully covered element still attached")
	}
}

func TestInsertNodeSplitsLeaf(t *testing.T) {
	a := Text("abcd")
	p := Element("p", a)
	doc := NewDocument(p)

	r := doc.NewRange()
	_ = r.SetStart(a, 2)
	x := doc.CreateText("X")
	if err := r.InsertNode(x); err != nil {
		t.Fatalf("InsertNode() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ab", "X", "cd"}, doc.Texts()); diff != "" {
		t.Errorf("Texts() mismatch (-want +got):\n%s", diff)
	}
	if x.(*Node).Parent() != p {
		t.Error("inserted node has the wrong parent")
	}
}

func TestInsertNodeAtLeafEnd(t *testing.T) {
	a := Text("ab")
	doc := NewDocument(a)

	r := doc.NewRange()
	_ = r.SetStart(a, 2)
	_ = r.InsertNode(Text("X"))
	if n := len(doc.Root().Children()); n != 2 {
		t.Errorf("root has %d children, want 2 (no empty suffix)", n)
	}
}

func TestInsertNodeIntoElement(t *testing.T) {
	p := Element("p", Text("a"), Text("c"))
	doc := NewDocument(p)

	r := doc.NewRange()
	_ = r.SetStart(p, 1)
	_ = r.InsertNode(Text("b"))
	if got := doc.Content(); got != "abc" {
		t.Errorf("Content() = %q, want %q", got, "abc")
	}
}

func TestSiblingsAfterMutation(t *testing.T) {
	p := Element("p")
	for i := range 10 {
		p.Append(Text(string(rune('0' + i))))
	}
	doc := NewDocument(p)

	r := doc.NewRange()
	_ = r.SetStart(p, 3)
	_ = r.InsertNode(Text("x"))
	_ = r.SetStart(p, 6)
	_ = r.SetEnd(p, 8)
	if err := r.DeleteContents(); err != nil {
		t.Fatalf("DeleteContents() error = %v", err)
	}
	p.Append(p.Children()[0])

	if got := doc.Content(); got != "12x347890" {
		t.Fatalf("Content() = %q, want %q", got, "12x347890")
	}
	kids := p.Children()
	for i, c := range kids {
		var next, prev dom.Node
		if i+1 < len(kids) {
			next = kids[i+1]
		}
		if i > 0 {
			prev = kids[i-1]
		}
		if got := doc.NextSibling(c); got != next {
			t.Errorf("NextSibling(%v) = %v, want %v", c, got, next)
		}
		if got := doc.PrevSibling(c); got != prev {
			t.Errorf("PrevSibling(%v) = %v, want %v", c, got, prev)
		}
	}
}

func TestInsertNodeRejectsAncestor(t *testing.T) {
	a := Text("a")
	p := Element("p", a)
	doc := NewDocument(p)

	r := doc.NewRange()
	_ = r.SetStart(a, 0)
	if err := r.InsertNode(p); !errors.Is(err, dom.ErrInvalidNode) {
		t.Errorf("InsertNode(ancestor) error = %v, want ErrInvalidNode", err)
	}
	if err := r.InsertNode(nil); !errors.Is(err, dom.ErrInvalidNode) {
		t.Errorf("InsertNode(nil) error = %v, want ErrInvalidNode", err)
	}
}

func TestSelection(t *testing.T) {
	a := Text("abc")
	em := Element("em", Text("x"))
	doc := NewDocument(a, em)
	sel := doc.Selection()

	if _, ok := sel.Current(); ok {
		t.Error("new selection is not empty")
	}
	if err := sel.SelectNode(a); err != nil {
		t.Fatal(err)
	}
	if cur, _ := sel.Current(); !cur.Equal(dom.NewBoundary(a, 0, a, 3)) {
		t.Errorf("SelectNode(text) = %v", cur)
	}
	if err := sel.SelectNode(em); err != nil {
		t.Fatal(err)
	}
	root := doc.Root()
	if cur, _ := sel.Current(); !cur.Equal(dom.NewBoundary(root, 1, root, 2)) {
		t.Errorf("SelectNode(element) = %v", cur)
	}
	if err := sel.SelectNode(Text("loose")); !errors.Is(err, dom.ErrDetached) {
		t.Errorf("SelectNode(detached) error = %v", err)
	}

	other := NewDocument(Text("z"))
	if err := sel.SelectRange(other.NewRange()); !errors.Is(err, dom.ErrInvalidRange) {
		t.Errorf("SelectRange(foreign) error = %v", err)
	}

	sel.RemoveMarkers()
	sel.Clear()
	if _, ok := sel.Current(); ok || sel.MarkersRemoved() != 1 {
		t.Error("Clear() or RemoveMarkers() not recorded")
	}
}

func TestTextBetween(t *testing.T) {
	hello := Text("Hello ")
	world := Text("world")
	doc := NewDocument(Element("p", hello), Element("p", Text(""), world))

	got, err := doc.TextBetween(dom.NewBoundary(hello, 3, world, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got != "lo wo" {
		t.Errorf("TextBetween() = %q, want %q", got, "lo wo")
	}

	doc.Remove(world)
	if _, err := doc.TextBetween(dom.NewBoundary(hello, 0, world, 1)); !errors.Is(err, dom.ErrDetached) {
		t.Errorf("TextBetween(detached) error = %v", err)
	}
}

func TestScrollIntoView(t *testing.T) {
	p := Element("p")
	doc := NewDocument(p)

	doc.ScrollIntoView(p)
	doc.ScrollIntoView(nil)
	if got := doc.Scrolled(); len(got) != 1 || got[0] != p {
		t.Errorf("Scrolled() = %v, want [<p>]", got)
	}
}
