package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/richfind/internal/config"
	"github.com/dshills/richfind/internal/dom/memdom"
	"github.com/dshills/richfind/internal/event"
	"github.com/dshills/richfind/internal/logging"
	"github.com/dshills/richfind/internal/metrics"
	"github.com/dshills/richfind/internal/plugin/api"
	"github.com/dshills/richfind/internal/plugin/lua"
	"github.com/dshills/richfind/internal/sched"
	"github.com/dshills/richfind/internal/session"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML or YAML configuration file. It is watched for
	// changes while the application runs.
	ConfigPath string

	// File is the document to search. Empty starts with an empty document.
	File string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// ReadOnly forces editor.read_only.
	ReadOnly bool

	// MetricsAddr serves /metrics when set.
	MetricsAddr string

	// ScriptTimeout bounds each script. Zero uses lua.DefaultExecutionTimeout.
	ScriptTimeout time.Duration

	// Input supplies commands. Defaults to os.Stdin.
	Input io.Reader

	// Output receives command and dialog output. Defaults to os.Stdout.
	Output io.Writer

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application owns the search stack for one document.
type Application struct {
	opts Options
	out  io.Writer

	cfg    config.Config
	logger *logging.Logger

	loop    *sched.Loop
	bus     *event.Bus
	doc     *memdom.Document
	ui      *ConsoleUI
	session *session.Session
	sync    *session.SyncAPI

	registry *prometheus.Registry
	plugins  *api.Registry
	watcher  *config.Watcher
	server   *http.Server

	running      atomic.Bool
	shutdownOnce sync.Once
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = lua.DefaultExecutionTimeout
	}
	app := &Application{
		opts: opts,
		out:  &lockedWriter{w: opts.Output},
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = app.withOverrides(cfg)

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(app.cfg.Logging.Level)
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.logger = logging.New(logCfg)

	app.loop = sched.NewLoop(sched.WithPanicHandler(func(r any, stack []byte) {
		app.logger.Error("task panicked", "panic", r, "stack", string(stack))
	}))
	app.bus = event.NewBus(event.WithErrorHandler(func(ev event.Event, sub *event.Subscription, err error) {
		app.logger.Warn("event handler failed", "topic", ev.Topic, "subscription", sub.ID(), "error", err)
	}))

	app.doc, err = app.loadDocument()
	if err != nil {
		return &InitError{Component: "document", Err: err}
	}

	app.ui = NewConsoleUI(app.out)
	app.session, err = session.New(session.Host{
		Tree:      app.doc,
		Root:      app.doc.Root(),
		Selection: app.doc.Selection(),
		Scroller:  app.doc,
		UI:        app.ui,
		Scheduler: app.loop,
	},
		session.WithSearchConfig(app.cfg.Search),
		session.WithReadOnly(app.cfg.Editor.ReadOnly),
		session.WithLogger(app.logger),
	)
	if err != nil {
		return &InitError{Component: "session", Err: err}
	}
	if err := app.session.Attach(app.bus); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	app.sync = session.NewSyncAPI(app.loop, app.session)

	app.registry = prometheus.NewRegistry()
	if _, err := metrics.Register(app.registry, app.session, prometheus.Labels{"document": app.documentName()}); err != nil {
		return &InitError{Component: "metrics", Err: err}
	}

	app.plugins, err = api.DefaultRegistry(&api.Context{Search: app.sync})
	if err != nil {
		return &InitError{Component: "plugins", Err: err}
	}

	if app.opts.ConfigPath != "" {
		app.watcher, err = config.NewWatcher(app.opts.ConfigPath, app.onConfigChange,
			config.WithErrorHandler(func(err error) {
				app.logger.Warn("config reload failed", "error", err)
			}))
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
	}

	app.logger.Debug("bootstrap complete",
		"document", app.documentName(),
		"leaves", len(app.doc.Texts()),
		"search_enabled", app.cfg.Search.Enabled)
	return nil
}

// withOverrides applies command-line settings on top of cfg.
func (app *Application) withOverrides(cfg config.Config) config.Config {
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	if app.opts.ReadOnly {
		cfg.Editor.ReadOnly = true
	}
	return cfg
}

func (app *Application) loadDocument() (*memdom.Document, error) {
	if app.opts.File == "" {
		return memdom.NewDocument(), nil
	}
	f, err := os.Open(app.opts.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDocument(f)
}

func (app *Application) documentName() string {
	if app.opts.File == "" {
		return "untitled"
	}
	return filepath.Base(app.opts.File)
}

// onConfigChange runs on the watcher goroutine and hands cfg to the loop.
func (app *Application) onConfigChange(cfg config.Config) {
	cfg = app.withOverrides(cfg)
	app.loop.Post(func() {
		app.cfg = cfg
		app.session.ApplyConfig(cfg)
		app.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
		app.logger.Info("config reloaded", "path", app.opts.ConfigPath)
	})
}

// Run drives the loop on its own goroutine and processes commands until
// the input ends, quit is read or ctx is done.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- app.loop.Run(ctx) }()

	if app.watcher != nil {
		go func() {
			if err := app.watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				app.logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}
	if app.opts.MetricsAddr != "" {
		app.serveMetrics()
	}

	err := app.readCommands(ctx)

	// Tear down through the bus so the session unsubscribes itself.
	if perr := app.publish(ctx, session.TopicDestroyed, nil); perr != nil {
		app.logger.Debug("destroy not delivered", "error", perr)
	}
	app.loop.Stop()
	cancel()
	<-loopDone

	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// publish delivers an event on the loop goroutine.
func (app *Application) publish(ctx context.Context, topic event.Topic, payload any) error {
	var perr error
	err := app.loop.Call(ctx, func() {
		perr = app.bus.Publish(ctx, event.New(topic, payload).WithSource("console"))
	})
	if err != nil {
		return err
	}
	return perr
}

// settle waits until no task is queued, so walks and their follow-ups
// have finished.
func (app *Application) settle(ctx context.Context) error {
	for {
		var idle bool
		if err := app.loop.Call(ctx, func() { idle = app.loop.Pending() == 0 }); err != nil {
			return err
		}
		if idle {
			return nil
		}
	}
}

// Session returns the search session. It must only be used on the loop.
func (app *Application) Session() *session.Session {
	return app.session
}

// Document returns the document being searched.
func (app *Application) Document() *memdom.Document {
	return app.doc
}

// Registry returns the metrics registry.
func (app *Application) Registry() *prometheus.Registry {
	return app.registry
}

// Shutdown releases the watcher and the metrics server. It is safe to call
// more than once.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.watcher != nil {
			_ = app.watcher.Close()
		}
		if app.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := app.server.Shutdown(ctx); err != nil {
				app.logger.Warn("metrics server shutdown", "error", err)
			}
		}
		if app.loop != nil {
			app.loop.Stop()
		}
	})
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// errorf prints a command error without stopping the console.
func (app *Application) errorf(format string, args ...any) {
	fmt.Fprintf(app.out, "error: "+format+"\n", args...)
}
