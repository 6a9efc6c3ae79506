package session

import "github.com/dshills/richfind/internal/dom"

// Outcome tags the result of a select or replace step.
type Outcome int

const (
	// OutcomeNotFound means the query produced no matches.
	OutcomeNotFound Outcome = iota
	// OutcomeApplied means the match was selected or replaced.
	OutcomeApplied
	// OutcomeStale means a match existed but could not be applied to the
	// live tree.
	OutcomeStale
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not-found"
	case OutcomeApplied:
		return "applied"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// SelectResult describes one FindAndSelect step.
type SelectResult struct {
	Outcome Outcome
	// Index is the 0-based index of the chosen match, or -1.
	Index int
	// Total is the number of matches.
	Total int
	// Boundary is the chosen match.
	Boundary dom.Boundary
	// Err holds the failure behind OutcomeStale, or ErrDestroyed.
	Err error
}

// Found reports whether the query had any match.
func (r SelectResult) Found() bool { return r.Outcome != OutcomeNotFound }

// OK reports whether the match became the selection.
func (r SelectResult) OK() bool { return r.Outcome == OutcomeApplied }

// ReplaceResult describes one FindAndReplace step.
type ReplaceResult struct {
	Outcome Outcome
	// Index is the 0-based index of the replaced match, or -1.
	Index int
	// Total is the number of matches before replacement.
	Total int
	// Boundary is the replaced match.
	Boundary dom.Boundary
	// Node is the inserted text leaf when Outcome is OutcomeApplied.
	Node dom.Node
	// Err holds the failure behind OutcomeStale, or ErrDestroyed.
	Err error
}

// Attempted reports whether a target match existed, whether or not the
// mutation succeeded.
func (r ReplaceResult) Attempted() bool { return r.Outcome != OutcomeNotFound }

// notFoundSelect and notFoundReplace are the empty results.
func notFoundSelect(total int, err error) SelectResult {
	return SelectResult{Outcome: OutcomeNotFound, Index: -1, Total: total, Err: err}
}

func notFoundReplace(err error) ReplaceResult {
	return ReplaceResult{Outcome: OutcomeNotFound, Index: -1, Err: err}
}
