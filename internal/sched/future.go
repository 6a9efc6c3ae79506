package sched

import (
	"context"
	"sync"
)

// Future is a value resolved at most once.
type Future[T any] struct {
	sched Scheduler

	mu        sync.Mutex
	done      chan struct{}
	value     T
	resolved  bool
	callbacks []func(T)
}

// NewFuture creates an unresolved future whose continuations run on s.
// A nil scheduler runs continuations inline.
func NewFuture[T any](s Scheduler) *Future[T] {
	return &Future[T]{
		sched: s,
		done:  make(chan struct{}),
	}
}

// Resolved creates a future already holding v.
func Resolved[T any](s Scheduler, v T) *Future[T] {
	f := NewFuture[T](s)
	f.Resolve(v)
	return f
}

// Resolve sets the value and schedules pending continuations.
// Only the first call has any effect; it reports whether this call won.
func (f *Future[T]) Resolve(v T) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.value = v
	f.resolved = true
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		f.dispatch(cb, v)
	}
	return true
}

// Then registers fn to run with the value once it is resolved.
func (f *Future[T]) Then(fn func(T)) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v := f.value
	f.mu.Unlock()
	f.dispatch(fn, v)
}

// Result returns the value and whether it has been resolved.
func (f *Future[T]) Result() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.resolved
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the value is resolved or ctx is done. It must not be
// called from the loop that resolves the future.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, _ := f.Result()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) dispatch(fn func(T), v T) {
	if f.sched == nil {
		fn(v)
		return
	}
	f.sched.Post(func() { fn(v) })
}

// Map returns a future resolved with fn applied to f's value.
func Map[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out := NewFuture[U](f.sched)
	f.Then(func(v T) {
		out.Resolve(fn(v))
	})
	return out
}

// Chain returns a future resolved with the value of the future fn returns.
func Chain[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := NewFuture[U](f.sched)
	f.Then(func(v T) {
		fn(v).Then(func(u U) {
			out.Resolve(u)
		})
	})
	return out
}
