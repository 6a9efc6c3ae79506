package walker

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/richfind/internal/dom"
	"github.com/dshills/richfind/internal/sched"
)

// DefaultTimeBudget is the per-turn budget used when none is configured.
const DefaultTimeBudget = 100 * time.Millisecond

// State is the lifecycle state of a Walker.
type State int

const (
	// StateIdle means Start has not been called.
	StateIdle State = iota
	// StateWalking means turns are still being scheduled.
	StateWalking
	// StateEnded means the End notification fired.
	StateEnded
	// StateBroken means the walk was canceled.
	StateBroken
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateEnded:
		return "ended"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Handler receives walk notifications. All callbacks run on the scheduler.
type Handler struct {
	// Visit is called for each node. Returning false ends the walk.
	Visit func(n dom.Node) bool
	// End is called once when the walk completes.
	End func()
	// Break is called once when the walk is canceled.
	Break func()
}

// Walker is a single-use chunked traversal.
// A Walker is not safe for concurrent use; it belongs to its scheduler's goroutine.
type Walker struct {
	id        string
	sched     sched.Scheduler
	tree      dom.Tree
	budget    time.Duration
	maxVisits int
	filter    func(dom.Node) bool
	now       func() time.Time

	it      *Iterator
	handler Handler
	state   State
	pending bool // Break requested before Start

	visits int
	turns  int
}

// Option configures a Walker.
type Option func(*Walker)

// WithTimeBudget sets how long one turn may keep stepping through nodes.
// A zero budget steps over a single node per turn.
func WithTimeBudget(d time.Duration) Option {
	return func(w *Walker) {
		if d >= 0 {
			w.budget = d
		}
	}
}

// WithMaxVisitsPerTurn caps visits per turn regardless of the time budget.
func WithMaxVisitsPerTurn(n int) Option {
	return func(w *Walker) {
		if n >= 0 {
			w.maxVisits = n
		}
	}
}

// WithFilter restricts visits to nodes accepted by fn.
func WithFilter(fn func(dom.Node) bool) Option {
	return func(w *Walker) {
		w.filter = fn
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Walker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithID sets the walk ID instead of generating one.
func WithID(id string) Option {
	return func(w *Walker) {
		w.id = id
	}
}

// New creates a walker that runs its turns on s.
func New(s sched.Scheduler, t dom.Tree, opts ...Option) *Walker {
	w := &Walker{
		sched:  s,
		tree:   t,
		budget: DefaultTimeBudget,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = uuid.New().String()
	}
	return w
}

// ID returns the walk identifier.
func (w *Walker) ID() string { return w.id }

// State returns the lifecycle state.
func (w *Walker) State() State { return w.state }

// Visits returns how many nodes were delivered to Visit.
func (w *Walker) Visits() int { return w.visits }

// Turns returns how many scheduler turns did traversal work.
func (w *Walker) Turns() int { return w.turns }

// Start begins walking root. The first nodes are visited on the next
// scheduler turn. A nil root ends with zero visits.
func (w *Walker) Start(root dom.Node, h Handler) error {
	if w.state != StateIdle {
		return ErrAlreadyStarted
	}
	w.handler = h
	w.it = NewIterator(w.tree, root, w.filter)
	w.state = StateWalking
	if w.pending {
		w.Break()
		return nil
	}
	w.sched.Post(w.turn)
	return nil
}

// Break cancels the walk. No Visit is delivered after Break returns and
// the Break notification replaces the End notification. Calling Break
// after the walk terminated does nothing.
func (w *Walker) Break() {
	switch w.state {
	case StateIdle:
		w.pending = true
		return
	case StateWalking:
	default:
		return
	}
	w.state = StateBroken
	w.it.Break()
	if w.handler.Break != nil {
		w.sched.Post(w.handler.Break)
	}
}

// turn performs one chunk of work.
func (w *Walker) turn() {
	if w.state != StateWalking {
		return
	}
	w.turns++
	deadline := w.now().Add(w.budget)
	visited := 0

	for {
		step := w.it.Advance()
		switch step.Kind {
		case KindEnded:
			w.finish()
			return
		case KindBroken:
			return
		case KindVisiting:
			w.visits++
			visited++
			if w.handler.Visit != nil && !w.handler.Visit(step.Node) {
				if w.state == StateWalking {
					w.finish()
				}
				return
			}
			if w.state != StateWalking {
				return
			}
		}

		// Filtered-out nodes still spend the time budget.
		if (w.maxVisits > 0 && visited >= w.maxVisits) || !w.now().Before(deadline) {
			w.sched.Post(w.turn)
			return
		}
	}
}

func (w *Walker) finish() {
	w.state = StateEnded
	w.it.Break()
	if w.handler.End != nil {
		w.handler.End()
	}
}
