package sched

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Scheduler runs callbacks after yielding to already queued work.
type Scheduler interface {
	Post(fn func())
}

// PanicHandler is invoked when a task panics. The loop keeps running.
type PanicHandler func(recovered any, stack []byte)

// Loop is a single-threaded cooperative task queue.
// Post is safe for concurrent use; tasks always run one at a time.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	halt    chan struct{}

	panicHandler PanicHandler

	// Stats
	posted   atomic.Uint64
	executed atomic.Uint64
	panicked atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPanicHandler sets the handler for panicking tasks.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *Loop) {
		l.panicHandler = h
	}
}

// NewLoop creates an empty loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		halt: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run after every task already queued.
// Tasks posted after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.post(fn)
}

// post queues fn and reports whether it was accepted.
func (l *Loop) post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.posted.Add(1)

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunOnce runs the oldest queued task. It returns false when the queue is empty.
func (l *Loop) RunOnce() bool {
	l.mu.Lock()
	if len(l.queue) == 0 {
		l.mu.Unlock()
		return false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.mu.Unlock()

	l.execute(fn)
	return true
}

// Drain runs tasks until the queue is empty, including tasks posted while
// draining. It returns the number of tasks run.
func (l *Loop) Drain() int {
	n := 0
	for l.RunOnce() {
		n++
	}
	return n
}

// Run executes tasks until ctx is done or the loop is stopped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for l.RunOnce() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if l.isStopped() {
			return ErrLoopStopped
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Call posts fn and waits for it to finish. It must not be called from a
// task running on the same loop. It returns ErrLoopStopped when the loop
// stops before fn has run.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.halt:
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// Stop drops queued tasks and refuses new ones.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		close(l.halt)
	}
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Stats returns loop counters.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Posted:   l.posted.Load(),
		Executed: l.executed.Load(),
		Panicked: l.panicked.Load(),
		Pending:  l.Pending(),
	}
}

// LoopStats contains loop counters.
type LoopStats struct {
	Posted   uint64
	Executed uint64
	Panicked uint64
	Pending  int
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panicked.Add(1)
			if l.panicHandler != nil {
				l.panicHandler(r, debug.Stack())
			}
		}
	}()
	l.executed.Add(1)
	fn()
}
