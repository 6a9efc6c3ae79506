package session

import (
	"fmt"

	"github.com/dshills/richfind/internal/dom"
	"github.com/dshills/richfind/internal/sched"
)

// Count returns the number of matches of query using the counting lane.
func (s *Session) Count(query string) *sched.Future[int] {
	return sched.Map(s.Find(LaneCount, query), func(b []dom.Boundary) int {
		return len(b)
	})
}

// RefreshCounters recounts the dialog query and shows the total. It
// resolves with the count, or 0 when the dialog is closed.
func (s *Session) RefreshCounters() *sched.Future[int] {
	ui := s.host.UI
	if s.destroyed || ui == nil || !ui.IsOpen() {
		return sched.Resolved(s.sched, 0)
	}
	return sched.Map(s.Count(ui.Query()), func(n int) int {
		if !s.destroyed && ui.IsOpen() {
			ui.SetCount(n)
		}
		return n
	})
}

// FindAndSelect selects the match after (forward) or before the current
// selection, wrapping around at either end. When the selection is not
// exactly a match, forward selects the first match and backward the last.
// Counters are refreshed before the returned future resolves.
func (s *Session) FindAndSelect(query string, forward bool) *sched.Future[SelectResult] {
	if s.destroyed {
		return sched.Resolved(s.sched, notFoundSelect(0, ErrDestroyed))
	}
	cursor, hasCursor := s.host.Selection.Current()

	return sched.Chain(s.Find(LaneSearch, query), func(bounds []dom.Boundary) *sched.Future[SelectResult] {
		if len(bounds) == 0 || s.destroyed {
			return sched.Resolved(s.sched, notFoundSelect(0, nil))
		}
		cur := -1
		if hasCursor {
			cur = indexOf(bounds, cursor)
		}
		idx := step(cur, len(bounds), forward)
		b := bounds[idx]
		res := SelectResult{
			Outcome:  OutcomeApplied,
			Index:    idx,
			Total:    len(bounds),
			Boundary: b,
		}
		if s.host.UI != nil {
			s.host.UI.SetCurrentIndex(idx + 1)
		}
		if err := s.selectBoundary(b); err != nil {
			res.Outcome = OutcomeStale
			res.Err = err
			s.counters.staleSteps.Add(1)
			s.logger.Warn("match could not be selected", "index", idx, "error", err)
		} else {
			s.counters.selections.Add(1)
		}
		s.scrollTo(b.Start.Node)

		return sched.Map(s.RefreshCounters(), func(int) SelectResult {
			return res
		})
	})
}

// FindAndReplace replaces the match equal to the current selection, or
// the first match, with replacement. The inserted text becomes the
// selection. The cache is invalidated whenever a replacement was attempted.
func (s *Session) FindAndReplace(query, replacement string) *sched.Future[ReplaceResult] {
	if s.destroyed {
		return sched.Resolved(s.sched, notFoundReplace(ErrDestroyed))
	}
	cursor, hasCursor := s.host.Selection.Current()

	return sched.Map(s.Find(LaneSearch, query), func(bounds []dom.Boundary) ReplaceResult {
		if len(bounds) == 0 || s.destroyed {
			return notFoundReplace(nil)
		}
		idx := 0
		if hasCursor {
			if i := indexOf(bounds, cursor); i >= 0 {
				idx = i
			}
		}
		b := bounds[idx]
		res := ReplaceResult{
			Outcome:  OutcomeApplied,
			Index:    idx,
			Total:    len(bounds),
			Boundary: b,
		}
		node, err := s.replaceBoundary(b, replacement)
		if err != nil {
			res.Outcome = OutcomeStale
			res.Err = err
			s.counters.staleSteps.Add(1)
			s.logger.Warn("match could not be replaced", "index", idx, "error", err)
		} else {
			res.Node = node
			s.counters.replacements.Add(1)
		}
		s.Invalidate()
		return res
	})
}

func (s *Session) selectBoundary(b dom.Boundary) error {
	rng := s.host.Tree.NewRange()
	if err := b.Apply(rng); err != nil {
		return err
	}
	return s.host.Selection.SelectRange(rng)
}

func (s *Session) replaceBoundary(b dom.Boundary, replacement string) (dom.Node, error) {
	tree := s.host.Tree
	rng := tree.NewRange()
	if err := b.Apply(rng); err != nil {
		return nil, err
	}
	if err := rng.DeleteContents(); err != nil {
		return nil, fmt.Errorf("delete contents: %w", err)
	}
	node := tree.CreateText(replacement)
	if err := rng.InsertNode(node); err != nil {
		return nil, fmt.Errorf("insert replacement: %w", err)
	}
	if err := s.host.Selection.SelectNode(node); err != nil {
		return nil, fmt.Errorf("select replacement: %w", err)
	}
	s.scrollTo(node)
	return node, nil
}

// scrollTo scrolls the element enclosing n, or the nearest element before
// it, into view. The editor root is never scrolled.
func (s *Session) scrollTo(n dom.Node) bool {
	if s.host.Scroller == nil || n == nil {
		return false
	}
	tree, root := s.host.Tree, s.host.Root
	box := dom.Closest(tree, n, tree.IsElement, root)
	if box == nil {
		box = dom.Prev(tree, n, tree.IsElement, root)
	}
	if box == nil || box == root {
		return false
	}
	s.host.Scroller.ScrollIntoView(box)
	return true
}

// indexOf returns the index of the match exactly equal to b, or -1.
func indexOf(bounds []dom.Boundary, b dom.Boundary) int {
	for i, m := range bounds {
		if m.Equal(b) {
			return i
		}
	}
	return -1
}

// step moves from cur to the neighboring match, wrapping at both ends.
// cur is -1 when no match is current.
func step(cur, n int, forward bool) int {
	switch {
	case cur < 0 && forward:
		return 0
	case cur < 0:
		return n - 1
	case forward:
		return (cur + 1) % n
	default:
		return (cur - 1 + n) % n
	}
}
