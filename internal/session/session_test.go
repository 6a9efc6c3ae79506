package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/richfind/internal/config"
	"github.com/dshills/richfind/internal/dom"
	"github.com/dshills/richfind/internal/dom/memdom"
	"github.com/dshills/richfind/internal/sched"
)

var boundaryCmp = cmp.Comparer(func(a, b dom.Boundary) bool { return a.Equal(b) })

// fakeUI records what the session shows.
type fakeUI struct {
	open        bool
	replace     bool
	query       string
	replacement string
	counts      []int
	current     int
	selInfo     bool
	closes      int
	destroys    int
}

func (u *fakeUI) IsOpen() bool { return u.open }
func (u *fakeUI) Open(replace bool) { u.open, u.replace = true, replace }
func (u *fakeUI) Close() {
	u.open = false
	u.closes++
}
func (u *fakeUI) Query() string { return u.query }
func (u *fakeUI) Replacement() string { return u.replacement }
func (u *fakeUI) SetCount(n int) { u.counts = append(u.counts, n) }
func (u *fakeUI) SetCurrentIndex(i int) { u.current = i }
func (u *fakeUI) HasSelectionInfo() bool { return u.selInfo }
func (u *fakeUI) ClearSelectionInfo() { u.selInfo = false }
func (u *fakeUI) Destroy() { u.destroys++ }

// tracingTree records the text of every leaf the session reads.
type tracingTree struct {
	*memdom.Document
	read []string
}

func (t *tracingTree) Text(n dom.Node) string {
	s := t.Document.Text(n)
	t.read = append(t.read, s)
	return s
}

type fixture struct {
	loop *sched.Loop
	doc  *memdom.Document
	ui   *fakeUI
	s    *Session
}

func newFixture(t *testing.T, children []*memdom.Node, opts ...Option) *fixture {
	t.Helper()
	doc := memdom.NewDocument(children...)
	return newFixtureWithTree(t, doc, doc, opts...)
}

func newFixtureWithTree(t *testing.T, doc *memdom.Document, tree dom.Tree, opts ...Option) *fixture {
	t.Helper()
	loop := sched.NewLoop()
	ui := &fakeUI{}
	s, err := New(Host{
		Tree:      tree,
		Root:      doc.Root(),
		Selection: doc.Selection(),
		Scroller:  doc,
		UI:        ui,
		Scheduler: loop,
	}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &fixture{loop: loop, doc: doc, ui: ui, s: s}
}

// settle drains the loop and returns the resolved value of fut.
func settle[T any](t *testing.T, f *fixture, fut *sched.Future[T]) T {
	t.Helper()
	f.loop.Drain()
	v, ok := fut.Result()
	if !ok {
		t.Fatal("future not resolved after drain")
	}
	return v
}

func TestNewRequiresHost(t *testing.T) {
	if _, err := New(Host{}); !errors.Is(err, ErrInvalidHost) {
		t.Errorf("New(Host{}) error = %v, want ErrInvalidHost", err)
	}
}

func TestFindAcrossLeaves(t *testing.T) {
	hello := memdom.Text("Hello ")
	world := memdom.Text("world")
	f := newFixture(t, []*memdom.Node{memdom.Element("p", hello), memdom.Element("p", world)})

	got := settle(t, f, f.s.Find(LaneSearch, "lo wo"))
	want := []dom.Boundary{dom.NewBoundary(hello, 3, world, 2)}
	if diff := cmp.Diff(want, got, boundaryCmp); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestFindNonOverlapping(t *testing.T) {
	leaf := memdom.Text("aaaa")
	f := newFixture(t, []*memdom.Node{leaf})

	got := settle(t, f, f.s.Find(LaneSearch, "aa"))
	want := []dom.Boundary{
		dom.NewBoundary(leaf, 0, leaf, 2),
		dom.NewBoundary(leaf, 2, leaf, 4),
	}
	if diff := cmp.Diff(want, got, boundaryCmp); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyQuery(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("something")})

	if got := settle(t, f, f.s.Find(LaneSearch, "")); len(got) != 0 {
		t.Errorf("Find(\"\") = %v, want none", got)
	}
	if got := settle(t, f, f.s.Count("")); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if st := f.s.Stats(); st.WalksStarted != 0 {
		t.Errorf("WalksStarted = %d, want 0", st.WalksStarted)
	}
}

func TestCountMatchesFindAndRoundTrips(t *testing.T) {
	f := newFixture(t, []*memdom.Node{
		memdom.Element("p", memdom.Text("the cat "), memdom.Element("b", memdom.Text("sat on")), memdom.Text(" the")),
		memdom.Element("p", memdom.Text("")),
		memdom.Element("p", memdom.Text(" mat, the end")),
	})

	for _, q := range []string{"the", "t", "at", "on the", "the mat", " ", "missing"} {
		bounds := settle(t, f, f.s.Find(LaneSearch, q))
		count := settle(t, f, f.s.Count(q))
		if count != len(bounds) {
			t.Errorf("Count(%q) = %d, Find returned %d", q, count, len(bounds))
		}
		for i, b := range bounds {
			text, err := f.doc.TextBetween(b)
			if err != nil {
				t.Fatalf("TextBetween(%v) error = %v", b, err)
			}
			if text != q {
				t.Errorf("match %d of %q covers %q", i, q, text)
			}
		}
	}
}

func TestCountReusesPass(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("abcabc")})

	first := settle(t, f, f.s.Count("abc"))
	second := settle(t, f, f.s.Count("abc"))
	if first != 2 || second != 2 {
		t.Fatalf("Count() = %d, %d; want 2, 2", first, second)
	}
	st := f.s.Stats()
	if st.WalksStarted != 1 {
		t.Errorf("WalksStarted = %d, want 1", st.WalksStarted)
	}
	if st.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", st.CacheHits)
	}
}

func TestDuplicateRequestsShareWalk(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("abc")})

	a := f.s.Find(LaneCount, "b")
	b := f.s.Find(LaneCount, "b")
	if a != b {
		t.Error("in-flight duplicate request did not share the pending result")
	}
	if got := settle(t, f, a); len(got) != 1 {
		t.Errorf("Find() = %d matches, want 1", len(got))
	}
	if c := f.s.Find(LaneSearch, "b"); c != a {
		t.Error("request on the other lane did not share the resolved result")
	}
	if st := f.s.Stats(); st.WalksStarted != 1 {
		t.Errorf("WalksStarted = %d, want 1", st.WalksStarted)
	}
}

func TestCountDoesNotCancelPendingSelect(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("foo bar foo baz")})

	f.s.Count("foo")
	sel := f.s.FindAndSelect("foo", true)
	baz := f.s.Count("baz")

	r := settle(t, f, sel)
	if r.Outcome != OutcomeApplied || r.Total != 2 {
		t.Errorf("FindAndSelect() = {%v total %d}, want {applied total 2}", r.Outcome, r.Total)
	}
	if got := settle(t, f, baz); got != 1 {
		t.Errorf("Count(baz) = %d, want 1", got)
	}
	if !f.s.Cached("foo") {
		t.Error("Cached(foo) = false after the select walk finished")
	}
}

func TestInvalidateForcesFreshWalk(t *testing.T) {
	leaf := memdom.Text("one two")
	f := newFixture(t, []*memdom.Node{leaf})

	if got := settle(t, f, f.s.Count("two")); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	leaf.SetData("two two two")
	f.s.Invalidate()
	if f.s.Cached("two") {
		t.Error("Cached() = true after Invalidate")
	}
	if got := settle(t, f, f.s.Count("two")); got != 3 {
		t.Errorf("Count() after change = %d, want 3", got)
	}
	st := f.s.Stats()
	if st.WalksStarted != 2 {
		t.Errorf("WalksStarted = %d, want 2", st.WalksStarted)
	}
	if st.Invalidations != 1 || f.s.Epoch() != 1 {
		t.Errorf("Invalidations = %d, Epoch = %d; want 1, 1", st.Invalidations, f.s.Epoch())
	}
}

func TestInvalidateBreaksRunningWalks(t *testing.T) {
	f := newFixture(t,
		[]*memdom.Node{memdom.Text("a"), memdom.Text("a"), memdom.Text("a")},
		WithSearchConfig(config.SearchConfig{Enabled: true, MaxVisitsPerTurn: 1}))

	search := f.s.Find(LaneSearch, "a")
	count := f.s.Count("b")
	f.loop.RunOnce()
	f.s.Invalidate()

	if got := settle(t, f, search); len(got) != 0 {
		t.Errorf("broken search resolved with %d matches, want none", len(got))
	}
	if got := settle(t, f, count); got != 0 {
		t.Errorf("broken count resolved with %d, want 0", got)
	}
	if st := f.s.Stats(); st.WalksBroken != 2 {
		t.Errorf("WalksBroken = %d, want 2", st.WalksBroken)
	}
}

func TestNewSearchBreaksPreviousFirst(t *testing.T) {
	doc := memdom.NewDocument(memdom.Text("a1"), memdom.Text("a2"), memdom.Text("b1"), memdom.Text("b2"))
	tree := &tracingTree{Document: doc}
	f := newFixtureWithTree(t, doc, tree,
		WithSearchConfig(config.SearchConfig{Enabled: true, MaxVisitsPerTurn: 1}))

	first := f.s.Find(LaneSearch, "a")
	f.loop.RunOnce()
	if len(tree.read) != 1 {
		t.Fatalf("read %v after one turn, want one leaf", tree.read)
	}

	second := f.s.Find(LaneSearch, "b")
	for {
		if _, ok := first.Result(); ok {
			break
		}
		if !f.loop.RunOnce() {
			t.Fatal("first walk never resolved")
		}
	}
	if len(tree.read) != 1 {
		t.Errorf("second walk read %v before the first walk was broken", tree.read[1:])
	}

	got := settle(t, f, second)
	if len(got) != 2 {
		t.Errorf("second search = %d matches, want 2", len(got))
	}
	if v, _ := first.Result(); len(v) != 0 {
		t.Errorf("superseded search = %d matches, want none", len(v))
	}
	if f.s.Cached("a") {
		t.Error("broken walk left a cache entry")
	}
}

func TestFindAndSelectWraps(t *testing.T) {
	f := newFixture(t, []*memdom.Node{
		memdom.Element("p", memdom.Text("ab ab")),
		memdom.Element("p", memdom.Text("xab")),
	})

	var seen []SelectResult
	for range 4 {
		seen = append(seen, settle(t, f, f.s.FindAndSelect("ab", true)))
	}
	for i, want := range []int{0, 1, 2, 0} {
		r := seen[i]
		if r.Outcome != OutcomeApplied || r.Index != want || r.Total != 3 {
			t.Errorf("step %d = {%v %d/%d}, want {applied %d/3}", i, r.Outcome, r.Index, r.Total, want)
		}
	}
	if !seen[0].Boundary.Equal(seen[3].Boundary) {
		t.Errorf("cycle ended at %v, want %v", seen[3].Boundary, seen[0].Boundary)
	}
	cur, ok := f.doc.Selection().Current()
	if !ok || !cur.Equal(seen[3].Boundary) {
		t.Errorf("selection = %v, want %v", cur, seen[3].Boundary)
	}
	if f.ui.current != 1 {
		t.Errorf("current index = %d, want 1", f.ui.current)
	}
	if st := f.s.Stats(); st.WalksStarted != 1 || st.Selections != 4 {
		t.Errorf("WalksStarted = %d, Selections = %d; want 1, 4", st.WalksStarted, st.Selections)
	}
}

func TestFindAndSelectBackward(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("x x x")})

	var idx []int
	for range 4 {
		idx = append(idx, settle(t, f, f.s.FindAndSelect("x", false)).Index)
	}
	if diff := cmp.Diff([]int{2, 1, 0, 2}, idx); diff != "" {
		t.Errorf("backward indexes mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAndSelectUnrelatedSelection(t *testing.T) {
	leaf := memdom.Text("x x x")
	f := newFixture(t, []*memdom.Node{leaf})
	// A selection that only overlaps a match is not that match.
	f.doc.Selection().Set(dom.NewBoundary(leaf, 2, leaf, 4))

	r := settle(t, f, f.s.FindAndSelect("x", true))
	if r.Index != 0 {
		t.Errorf("Index = %d, want 0", r.Index)
	}
}

func TestFindAndSelectNotFound(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("abc")})

	r := settle(t, f, f.s.FindAndSelect("zzz", true))
	if r.Found() || r.OK() || r.Index != -1 {
		t.Errorf("FindAndSelect() = %+v, want not found", r)
	}
	if _, ok := f.doc.Selection().Current(); ok {
		t.Error("selection changed for a query without matches")
	}
}

func TestFindAndSelectStale(t *testing.T) {
	first := memdom.Text("foo bar")
	f := newFixture(t, []*memdom.Node{first, memdom.Text("foo")})

	settle(t, f, f.s.Find(LaneSearch, "foo"))
	// The host changed the text without notifying the session.
	first.SetData("f")

	r := settle(t, f, f.s.FindAndSelect("foo", true))
	if r.Outcome != OutcomeStale {
		t.Fatalf("Outcome = %v, want stale", r.Outcome)
	}
	if !errors.Is(r.Err, dom.ErrIndexSize) {
		t.Errorf("Err = %v, want ErrIndexSize", r.Err)
	}
	if !r.Found() || r.OK() {
		t.Errorf("Found() = %v, OK() = %v; want true, false", r.Found(), r.OK())
	}
	if st := f.s.Stats(); st.StaleSteps != 1 {
		t.Errorf("StaleSteps = %d, want 1", st.StaleSteps)
	}
}

func TestFindAndSelectScrolls(t *testing.T) {
	p2 := memdom.Element("p", memdom.Text("b"), memdom.Element("i", memdom.Text("match")))
	f := newFixture(t, []*memdom.Node{memdom.Element("p", memdom.Text("a")), p2})

	settle(t, f, f.s.FindAndSelect("match", true))
	scrolled := f.doc.Scrolled()
	if len(scrolled) != 1 || scrolled[0] != p2.Children()[1] {
		t.Errorf("scrolled %v, want [<i>]", scrolled)
	}
}

func TestFindAndSelectNeverScrollsRoot(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("top level")})

	settle(t, f, f.s.FindAndSelect("level", true))
	if got := f.doc.Scrolled(); len(got) != 0 {
		t.Errorf("scrolled %v, want nothing", got)
	}
}

func TestFindAndSelectRefreshesCounters(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("a b a")})
	f.ui.open = true
	f.ui.query = "a"

	settle(t, f, f.s.FindAndSelect("a", true))
	if diff := cmp.Diff([]int{2}, f.ui.counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAndReplaceSecondOfThree(t *testing.T) {
	mid := memdom.Text("two foo three")
	p2 := memdom.Element("p", mid)
	f := newFixture(t, []*memdom.Node{
		memdom.Element("p", memdom.Text("one foo")),
		p2,
		memdom.Element("p", memdom.Text("foo")),
	})

	bounds := settle(t, f, f.s.Find(LaneSearch, "foo"))
	if len(bounds) != 3 {
		t.Fatalf("Find() = %d matches, want 3", len(bounds))
	}
	f.doc.Selection().Set(bounds[1])

	r := settle(t, f, f.s.FindAndReplace("foo", "X"))
	if r.Outcome != OutcomeApplied || r.Index != 1 || r.Err != nil {
		t.Fatalf("FindAndReplace() = %+v, want applied at 1", r)
	}

	want := []string{"one foo", "two ", "X", " three", "foo"}
	if diff := cmp.Diff(want, f.doc.Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	x, ok := r.Node.(*memdom.Node)
	if !ok || x.Data() != "X" || x.Parent() != p2 {
		t.Fatalf("inserted node = %v", r.Node)
	}
	cur, _ := f.doc.Selection().Current()
	if !cur.Equal(dom.NewBoundary(x, 0, x, 1)) {
		t.Errorf("selection = %v, want the inserted leaf", cur)
	}
	if scrolled := f.doc.Scrolled(); len(scrolled) == 0 || scrolled[len(scrolled)-1] != p2 {
		t.Errorf("scrolled %v, want p2 last", scrolled)
	}
	if f.s.Cached("foo") {
		t.Error("cache survived a replacement")
	}
	if got := settle(t, f, f.s.Count("foo")); got != 2 {
		t.Errorf("Count() after replace = %d, want 2", got)
	}
}

func TestFindAndReplaceWithoutSelection(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("cat cat")})

	r := settle(t, f, f.s.FindAndReplace("cat", "dog"))
	if !r.Attempted() || r.Index != 0 {
		t.Fatalf("FindAndReplace() = %+v, want first match", r)
	}
	if got := f.doc.Content(); got != "dog cat" {
		t.Errorf("Content() = %q, want %q", got, "dog cat")
	}
}

func TestFindAndReplaceAcrossLeaves(t *testing.T) {
	f := newFixture(t, []*memdom.Node{
		memdom.Element("p", memdom.Text("Hello ")),
		memdom.Element("p", memdom.Text("world")),
	})

	r := settle(t, f, f.s.FindAndReplace("lo wo", "-"))
	if r.Outcome != OutcomeApplied {
		t.Fatalf("Outcome = %v, want applied", r.Outcome)
	}
	if got := f.doc.Content(); got != "Hel-rld" {
		t.Errorf("Content() = %q, want %q", got, "Hel-rld")
	}
}

func TestFindAndReplaceNotFound(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("abc")})

	r := settle(t, f, f.s.FindAndReplace("zzz", "X"))
	if r.Attempted() {
		t.Errorf("Attempted() = true for a query without matches")
	}
	if st := f.s.Stats(); st.Invalidations != 0 {
		t.Errorf("Invalidations = %d, want 0", st.Invalidations)
	}
}

func TestFindAndReplaceStale(t *testing.T) {
	leaf := memdom.Text("foo")
	f := newFixture(t, []*memdom.Node{leaf})

	settle(t, f, f.s.Find(LaneSearch, "foo"))
	f.doc.Remove(leaf)

	r := settle(t, f, f.s.FindAndReplace("foo", "X"))
	if r.Outcome != OutcomeStale || !r.Attempted() {
		t.Fatalf("FindAndReplace() = %+v, want stale", r)
	}
	if !errors.Is(r.Err, dom.ErrDetached) {
		t.Errorf("Err = %v, want ErrDetached", r.Err)
	}
	if f.s.Cached("foo") {
		t.Error("cache survived a failed replacement")
	}
}

func TestRefreshCounters(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("o o o")})
	f.ui.query = "o"

	if got := settle(t, f, f.s.RefreshCounters()); got != 0 || len(f.ui.counts) != 0 {
		t.Errorf("closed dialog: RefreshCounters() = %d, counts = %v", got, f.ui.counts)
	}
	f.ui.open = true
	if got := settle(t, f, f.s.RefreshCounters()); got != 3 {
		t.Errorf("RefreshCounters() = %d, want 3", got)
	}
	if diff := cmp.Diff([]int{3}, f.ui.counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("abc")},
		WithSearchConfig(config.SearchConfig{Enabled: true, MaxVisitsPerTurn: 1}))

	pending := f.s.Find(LaneSearch, "b")
	f.s.Destroy()
	f.s.Destroy()

	if f.ui.destroys != 1 {
		t.Errorf("UI destroyed %d times, want 1", f.ui.destroys)
	}
	if got := settle(t, f, pending); len(got) != 0 {
		t.Errorf("pending walk resolved with %d matches", len(got))
	}
	sel := settle(t, f, f.s.FindAndSelect("b", true))
	if !errors.Is(sel.Err, ErrDestroyed) {
		t.Errorf("FindAndSelect() Err = %v, want ErrDestroyed", sel.Err)
	}
	rep := settle(t, f, f.s.FindAndReplace("b", "x"))
	if !errors.Is(rep.Err, ErrDestroyed) {
		t.Errorf("FindAndReplace() Err = %v, want ErrDestroyed", rep.Err)
	}
}

func TestApplyConfig(t *testing.T) {
	f := newFixture(t, []*memdom.Node{memdom.Text("a a a a")})

	cfg := config.Default()
	cfg.Search.MaxVisitsPerTurn = 1
	cfg.Editor.ReadOnly = true
	f.s.ApplyConfig(cfg)

	if !f.s.readOnly {
		t.Error("read-only not applied")
	}
	if f.s.cfg.MaxVisitsPerTurn != 1 {
		t.Errorf("MaxVisitsPerTurn = %d, want 1", f.s.cfg.MaxVisitsPerTurn)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		cur, n  int
		forward bool
		want    int
	}{
		{-1, 3, true, 0},
		{-1, 3, false, 2},
		{0, 3, true, 1},
		{2, 3, true, 0},
		{0, 3, false, 2},
		{0, 1, true, 0},
	}
	for _, tt := range tests {
		if got := step(tt.cur, tt.n, tt.forward); got != tt.want {
			t.Errorf("step(%d, %d, %v) = %d, want %d", tt.cur, tt.n, tt.forward, got, tt.want)
		}
	}
}
