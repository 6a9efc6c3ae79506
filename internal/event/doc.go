// Package event provides the in-process event bus the search session
// listens on.
//
// Events carry a hierarchical dot-separated topic and an arbitrary payload.
// Subscriptions use topic patterns with wildcards:
//
//	search.*      - matches search.next, search.replace (single segment)
//	input.**      - matches input.key, input.pointer.down (multi-segment)
//	document.content.changed - exact match
//
// Delivery is synchronous: Publish runs every matching handler in the
// publisher's goroutine, in subscription order, recovering handler panics.
// Hosts that drive the search session on a sched.Loop publish from that
// loop so handlers observe a single-threaded world.
package event
