package session

import (
	"time"

	"github.com/dshills/richfind/internal/config"
	"github.com/dshills/richfind/internal/dom"
	"github.com/dshills/richfind/internal/event"
	"github.com/dshills/richfind/internal/locate"
	"github.com/dshills/richfind/internal/logging"
	"github.com/dshills/richfind/internal/sched"
	"github.com/dshills/richfind/internal/walker"
)

// UI is the search dialog the session drives. The dialog itself lives
// outside this package.
type UI interface {
	IsOpen() bool
	Open(replace bool)
	Close()
	Query() string
	Replacement() string
	// SetCount shows the total number of matches.
	SetCount(n int)
	// SetCurrentIndex shows the 1-based index of the selected match.
	SetCurrentIndex(i int)
	// HasSelectionInfo reports whether the dialog saved the editor
	// selection when it opened.
	HasSelectionInfo() bool
	ClearSelectionInfo()
	Destroy()
}

// Host bundles the capabilities a session needs from the editor.
type Host struct {
	Tree      dom.Tree
	Root      dom.Node
	Selection dom.Selection
	// Scroller is optional.
	Scroller dom.Scroller
	// UI is optional; without it counters are not refreshed.
	UI        UI
	Scheduler sched.Scheduler
}

// Lane identifies one of the two independent walk lanes.
type Lane int

const (
	// LaneSearch serves select and replace.
	LaneSearch Lane = iota
	// LaneCount serves counter refreshes.
	LaneCount
)

// String returns the lane name.
func (l Lane) String() string {
	if l == LaneCount {
		return "count"
	}
	return "search"
}

// entry is a cached, possibly pending, match list. lane is the lane whose
// walk produces it.
type entry struct {
	epoch  uint64
	lane   Lane
	future *sched.Future[[]dom.Boundary]
}

// usableBy reports whether ln may share e. A pending entry belongs to its
// lane, whose cancellation would resolve it empty.
func (e *entry) usableBy(ln Lane) bool {
	if e.lane == ln {
		return true
	}
	_, done := e.future.Result()
	return done
}

// lane tracks the walk a lane currently owns.
type lane struct {
	w     *walker.Walker
	query string
	e     *entry
}

func (l *lane) walking() bool {
	return l.w != nil && l.w.State() == walker.StateWalking
}

// Session is the search coordinator for one editor.
type Session struct {
	host     Host
	sched    sched.Scheduler
	cfg      config.SearchConfig
	readOnly bool
	logger   *logging.Logger
	walkOpts []walker.Option

	cache map[string]*entry
	epoch uint64
	lanes [2]lane

	bus  *event.Bus
	subs []*event.Subscription

	destroyed bool
	counters  counters
}

// Option configures a Session.
type Option func(*Session)

// WithSearchConfig sets budgets and the enabled flag.
func WithSearchConfig(cfg config.SearchConfig) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithReadOnly blocks opening the replace dialog.
func WithReadOnly(readOnly bool) Option {
	return func(s *Session) {
		s.readOnly = readOnly
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWalkerOptions appends options to every walker the session creates.
func WithWalkerOptions(opts ...walker.Option) Option {
	return func(s *Session) {
		s.walkOpts = append(s.walkOpts, opts...)
	}
}

// New creates a session over host.
func New(host Host, opts ...Option) (*Session, error) {
	if host.Tree == nil || host.Selection == nil || host.Scheduler == nil {
		return nil, ErrInvalidHost
	}
	s := &Session{
		host:   host,
		sched:  host.Scheduler,
		cfg:    config.Default().Search,
		logger: logging.Null(),
		cache:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("search")
	return s, nil
}

// ApplyConfig replaces budgets and editor settings. Walks already running
// keep their old budget.
func (s *Session) ApplyConfig(cfg config.Config) {
	s.cfg = cfg.Search
	s.readOnly = cfg.Editor.ReadOnly
	s.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	s.logger.Debug("config applied",
		"navigation_budget", cfg.Search.NavigationBudget,
		"count_budget", cfg.Search.CountBudget)
}

// Epoch returns the current content epoch. It advances on every
// invalidation.
func (s *Session) Epoch() uint64 { return s.epoch }

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Find returns every match of query, walking the tree on the given lane
// unless a result for query is cached in the current epoch. A superseded
// walk resolves with no matches.
func (s *Session) Find(ln Lane, query string) *sched.Future[[]dom.Boundary] {
	if s.destroyed {
		return sched.Resolved[[]dom.Boundary](s.sched, nil)
	}
	cur := &s.lanes[ln]
	if query != "" && cur.walking() && cur.query == query && s.cache[query] == cur.e {
		s.counters.cacheHits.Add(1)
		return cur.e.future
	}
	s.cancelLane(ln)
	if query == "" {
		return sched.Resolved[[]dom.Boundary](s.sched, nil)
	}
	if e, ok := s.cache[query]; ok && e.epoch == s.epoch && e.usableBy(ln) {
		s.counters.cacheHits.Add(1)
		s.logger.Debug("cache hit", "lane", ln, "epoch", e.epoch)
		return e.future
	}
	s.counters.cacheMisses.Add(1)
	return s.walk(ln, query)
}

// walk starts a fresh walk for query on ln and caches its future.
func (s *Session) walk(ln Lane, query string) *sched.Future[[]dom.Boundary] {
	e := &entry{
		epoch:  s.epoch,
		lane:   ln,
		future: sched.NewFuture[[]dom.Boundary](s.sched),
	}
	s.cache[query] = e

	w := walker.New(s.sched, s.host.Tree, s.walkerOptions(ln)...)
	s.lanes[ln] = lane{w: w, query: query, e: e}
	log := s.logger.WithField("walk", w.ID()).WithField("lane", ln)

	loc := locate.New()
	tree := s.host.Tree
	start := time.Now()
	err := w.Start(s.host.Root, walker.Handler{
		Visit: func(n dom.Node) bool {
			loc.Add(n, tree.Text(n))
			return true
		},
		End: func() {
			s.counters.walksEnded.Add(1)
			s.counters.leavesVisited.Add(uint64(loc.Leaves()))
			if e.epoch != s.epoch {
				s.drop(query, e)
				e.future.Resolve(nil)
				return
			}
			bounds := loc.Locate(query)
			log.Debug("walk ended",
				"leaves", loc.Leaves(),
				"bytes", loc.Len(),
				"turns", w.Turns(),
				"matches", len(bounds),
				"elapsed", time.Since(start))
			e.future.Resolve(bounds)
		},
		Break: func() {
			s.counters.walksBroken.Add(1)
			s.drop(query, e)
			log.Debug("walk broken", "leaves", loc.Leaves())
			e.future.Resolve(nil)
		},
	})
	if err != nil {
		log.Error("walk failed to start", "error", err)
		s.drop(query, e)
		e.future.Resolve(nil)
		return e.future
	}
	s.counters.walksStarted.Add(1)
	log.Debug("walk started", "query_len", len(query))
	return e.future
}

func (s *Session) walkerOptions(ln Lane) []walker.Option {
	budget := s.cfg.NavigationBudget.Std()
	if ln == LaneCount {
		budget = s.cfg.CountBudget.Std()
	}
	opts := []walker.Option{
		walker.WithTimeBudget(budget),
		walker.WithMaxVisitsPerTurn(s.cfg.MaxVisitsPerTurn),
		walker.WithFilter(s.host.Tree.IsText),
	}
	return append(opts, s.walkOpts...)
}

// cancelLane breaks the walk ln owns and forgets its cache entry at once so
// later requests in the same turn start a fresh pass.
func (s *Session) cancelLane(ln Lane) {
	cur := &s.lanes[ln]
	if cur.walking() {
		cur.w.Break()
		s.drop(cur.query, cur.e)
	}
	*cur = lane{}
}

// drop removes e from the cache if it is still the entry for query.
func (s *Session) drop(query string, e *entry) {
	if s.cache[query] == e {
		delete(s.cache, query)
	}
}

// Invalidate discards every cached result and cancels both lanes. Hosts
// call it on any content change.
func (s *Session) Invalidate() {
	if s.destroyed {
		return
	}
	s.cancelLane(LaneSearch)
	s.cancelLane(LaneCount)
	clear(s.cache)
	s.epoch++
	s.counters.invalidations.Add(1)
	s.logger.Debug("cache invalidated", "epoch", s.epoch)
}

// Cached reports whether a result for query is cached in the current epoch.
func (s *Session) Cached(query string) bool {
	e, ok := s.cache[query]
	return ok && e.epoch == s.epoch
}

// Destroy cancels all walks, drops the cache, detaches from the event bus
// and destroys the UI. Later operations report ErrDestroyed.
func (s *Session) Destroy() {
	if s.destroyed {
		return
	}
	s.cancelLane(LaneSearch)
	s.cancelLane(LaneCount)
	clear(s.cache)
	s.Detach()
	if s.host.UI != nil {
		s.host.UI.Destroy()
	}
	s.destroyed = true
	s.logger.Debug("session destroyed")
}
