package sched

import "errors"

var (
	// ErrLoopStopped is returned by Call after Stop.
	ErrLoopStopped = errors.New("loop is stopped")
)
