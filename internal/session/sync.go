package session

import (
	"context"
	"errors"

	"github.com/dshills/richfind/internal/dom"
	"github.com/dshills/richfind/internal/sched"
)

// Caller runs a function on the goroutine that owns a session.
// *sched.Loop implements it.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// SyncAPI exposes blocking session operations to goroutines other than the
// one driving the session's scheduler. It must not be used from that
// goroutine.
type SyncAPI struct {
	caller  Caller
	session *Session
}

// NewSyncAPI wraps s. c must run functions on the scheduler s was built on.
func NewSyncAPI(c Caller, s *Session) *SyncAPI {
	return &SyncAPI{caller: c, session: s}
}

// Count returns the number of matches of query.
func (a *SyncAPI) Count(ctx context.Context, query string) (int, error) {
	return await(ctx, a.caller, func() *sched.Future[int] {
		return a.session.Count(query)
	})
}

// FindAll returns every match of query.
func (a *SyncAPI) FindAll(ctx context.Context, query string) ([]dom.Boundary, error) {
	return await(ctx, a.caller, func() *sched.Future[[]dom.Boundary] {
		return a.session.Find(LaneSearch, query)
	})
}

// Select moves the selection to the next or previous match of query.
func (a *SyncAPI) Select(ctx context.Context, query string, forward bool) (SelectResult, error) {
	res, err := await(ctx, a.caller, func() *sched.Future[SelectResult] {
		return a.session.FindAndSelect(query, forward)
	})
	if err == nil && errors.Is(res.Err, ErrDestroyed) {
		err = ErrDestroyed
	}
	return res, err
}

// Replace replaces the current or first match of query.
func (a *SyncAPI) Replace(ctx context.Context, query, replacement string) (ReplaceResult, error) {
	res, err := await(ctx, a.caller, func() *sched.Future[ReplaceResult] {
		return a.session.FindAndReplace(query, replacement)
	})
	if err == nil && errors.Is(res.Err, ErrDestroyed) {
		err = ErrDestroyed
	}
	return res, err
}

// await starts an operation on the owning goroutine and waits for its result.
func await[T any](ctx context.Context, c Caller, start func() *sched.Future[T]) (T, error) {
	var fut *sched.Future[T]
	if err := c.Call(ctx, func() { fut = start() }); err != nil {
		var zero T
		return zero, err
	}
	return fut.Wait(ctx)
}
