package session

import "sync/atomic"

// Stats is a snapshot of session counters.
type Stats struct {
	WalksStarted  uint64
	WalksEnded    uint64
	WalksBroken   uint64
	LeavesVisited uint64
	CacheHits     uint64
	CacheMisses   uint64
	Invalidations uint64
	Selections    uint64
	StaleSteps    uint64
	Replacements  uint64
}

// counters are updated on the loop goroutine and read from anywhere.
type counters struct {
	walksStarted  atomic.Uint64
	walksEnded    atomic.Uint64
	walksBroken   atomic.Uint64
	leavesVisited atomic.Uint64
	cacheHits     atomic.Uint64
	cacheMisses   atomic.Uint64
	invalidations atomic.Uint64
	selections    atomic.Uint64
	staleSteps    atomic.Uint64
	replacements  atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		WalksStarted:  c.walksStarted.Load(),
		WalksEnded:    c.walksEnded.Load(),
		WalksBroken:   c.walksBroken.Load(),
		LeavesVisited: c.leavesVisited.Load(),
		CacheHits:     c.cacheHits.Load(),
		CacheMisses:   c.cacheMisses.Load(),
		Invalidations: c.invalidations.Load(),
		Selections:    c.selections.Load(),
		StaleSteps:    c.staleSteps.Load(),
		Replacements:  c.replacements.Load(),
	}
}

// Stats returns a snapshot of the session counters. Safe for concurrent use.
func (s *Session) Stats() Stats {
	return s.counters.snapshot()
}
