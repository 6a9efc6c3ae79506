// Package session coordinates interactive find and find-and-replace over a
// host document tree.
//
// A Session owns two walk lanes, a result cache and the event wiring:
//
//   - The search lane serves FindAndSelect and FindAndReplace. It uses the
//     interactive per-turn budget.
//   - The counting lane serves Count and RefreshCounters with a near-zero
//     budget so counter refreshes stay in the background.
//
// Starting a walk on a lane cancels the walk already running on that lane.
// Results are cached per query string as futures, so duplicate requests in
// the same document epoch share one pass. Any content change clears the
// whole cache and cancels both lanes.
//
// No operation returns an error for the ordinary failure modes. A query
// without matches, a match that can no longer be applied to the live tree
// and a superseded walk all degrade to an Outcome the caller can inspect.
//
// A Session is single-threaded: every method must run on the goroutine that
// drives its scheduler. SyncAPI wraps a Session for callers on other
// goroutines.
package session
