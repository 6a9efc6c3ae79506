// Package sched provides the cooperative scheduling facility the search
// subsystem rides on.
//
// A Loop is a FIFO of zero-argument tasks executed one at a time on a
// single goroutine. Long-running work (such as a tree walk) is split into
// chunks, each chunk posting its continuation back onto the loop, so other
// tasks interleave between chunks and nothing blocks the editing session.
//
// A Future is a single-resolution deferred value. Continuations registered
// with Then run as loop tasks after the value is resolved.
//
// Tests drive a Loop deterministically with RunOnce and Drain; embedders
// typically run it on a dedicated goroutine with Run and reach it from
// other goroutines through Call.
package sched
