package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrorHandler observes handler errors and recovered panics.
type ErrorHandler func(ev Event, sub *Subscription, err error)

// Subscription is a registered handler.
type Subscription struct {
	id      string
	pattern Topic
	handler Handler
	active  atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Pattern returns the topic pattern.
func (s *Subscription) Pattern() Topic { return s.pattern }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return s.active.Load() }

// Bus delivers events synchronously to matching subscriptions.
// Bus is safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	onError ErrorHandler

	// Stats
	published atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithErrorHandler sets the handler for failed or panicking deliveries.
func WithErrorHandler(h ErrorHandler) Option {
	return func(b *Bus) {
		b.onError = h
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for events whose topic matches pattern.
func (b *Bus) Subscribe(pattern Topic, h Handler) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := &Subscription{
		id:      uuid.New().String(),
		pattern: pattern,
		handler: h,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			s.active.Store(false)
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers ev to every matching subscription in subscription order.
// Handler errors and panics are counted and reported to the error handler;
// they never stop delivery to the remaining subscriptions.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if !ev.Topic.IsValid() || ev.Topic.IsWildcard() {
		return ErrInvalidEvent
	}
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Topic.Matches(s.pattern) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A handler may unsubscribe a later subscription.
		if !s.IsActive() {
			continue
		}
		if err := b.deliver(ctx, ev, s); err != nil {
			b.failed.Add(1)
			if b.onError != nil {
				b.onError(ev, s, err)
			}
			continue
		}
		b.delivered.Add(1)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, ev Event, s *Subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panicked.Add(1)
			err = &PanicError{SubscriptionID: s.id, Topic: ev.Topic, Value: r}
		}
	}()
	return s.handler(ctx, ev)
}

// Count returns the number of active subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats contains bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Failed    uint64
	Panicked  uint64
}

// Stats returns bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Failed:    b.failed.Load(),
		Panicked:  b.panicked.Load(),
	}
}
