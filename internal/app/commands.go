package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/richfind/internal/event"
	"github.com/dshills/richfind/internal/session"
)

// command is one console verb.
type command struct {
	usage   string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, args []string) error
}

func (app *Application) commands() map[string]command {
	publish := func(topic event.Topic, usage string, payload func(args []string) any) command {
		return command{usage: usage, run: func(ctx context.Context, args []string) error {
			var p any
			if payload != nil {
				p = payload(args)
			}
			return app.publish(ctx, topic, p)
		}}
	}

	cmds := map[string]command{
		"find": {usage: "find QUERY", minArgs: 1, maxArgs: 1, run: func(ctx context.Context, args []string) error {
			return app.selectMatch(ctx, args[0], true)
		}},
		"prev": {usage: "prev QUERY", minArgs: 1, maxArgs: 1, run: func(ctx context.Context, args []string) error {
			return app.selectMatch(ctx, args[0], false)
		}},
		"next":     publish(session.TopicNext, "next", nil),
		"previous": publish(session.TopicPrevious, "previous", nil),
		"close":    publish(session.TopicModeChanging, "close", nil),
		"key":      publish(session.TopicKey, "key", nil),
		"edit":     publish(session.TopicContentChanged, "edit", nil),
		"query": {usage: "query TEXT", minArgs: 1, maxArgs: 1, run: func(_ context.Context, args []string) error {
			app.ui.SetQuery(args[0])
			return nil
		}},
		"with": {usage: "with TEXT", minArgs: 1, maxArgs: 1, run: func(_ context.Context, args []string) error {
			app.ui.SetReplacement(args[0])
			return nil
		}},
		"count": {usage: "count QUERY", minArgs: 1, maxArgs: 1, run: func(ctx context.Context, args []string) error {
			n, err := app.sync.Count(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "%d matches\n", n)
			return nil
		}},
		"all":       {usage: "all QUERY", minArgs: 1, maxArgs: 1, run: app.listMatches},
		"show":      {usage: "show", run: app.show},
		"selection": {usage: "selection", run: app.showSelection},
		"script": {usage: "script FILE", minArgs: 1, maxArgs: 1, run: func(ctx context.Context, args []string) error {
			return app.runScript(ctx, args[0])
		}},
		"stats": {usage: "stats", run: func(context.Context, []string) error {
			return app.writeStats(app.out)
		}},
		"quit": {usage: "quit", run: func(context.Context, []string) error {
			return ErrQuit
		}},
	}

	open := publish(session.TopicOpenDialog, "open [replace]", func(args []string) any {
		return session.OpenPayload{Replace: len(args) == 1 && args[0] == "replace"}
	})
	open.maxArgs = 1
	cmds["open"] = open

	cmds["replace"] = command{usage: "replace [QUERY REPLACEMENT]", maxArgs: 2, run: func(ctx context.Context, args []string) error {
		var p any
		switch len(args) {
		case 0:
		case 2:
			p = session.ReplacePayload{Query: args[0], Replacement: args[1]}
		default:
			return fmt.Errorf("%w: usage: replace [QUERY REPLACEMENT]", ErrUsage)
		}
		return app.publish(ctx, session.TopicReplace, p)
	}}

	return cmds
}

// readCommands executes input lines until it is exhausted.
func (app *Application) readCommands(ctx context.Context) error {
	cmds := app.commands()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(app.opts.Input)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if err := app.execute(ctx, cmds, line); err != nil {
				if errors.Is(err, ErrQuit) || ctx.Err() != nil {
					return err
				}
				app.errorf("%v", err)
			}
		}
	}
}

func (app *Application) execute(ctx context.Context, cmds map[string]command, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	c, ok := cmds[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	args, err := splitArgs(rest)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(args) < c.minArgs || len(args) > c.maxArgs {
		return fmt.Errorf("%w: usage: %s", ErrUsage, c.usage)
	}
	app.logger.Debug("command", "name", name, "args", len(args))
	if err := c.run(ctx, args); err != nil {
		return err
	}
	return app.settle(ctx)
}

// splitArgs splits s into bare words and Go-quoted strings.
func splitArgs(s string) ([]string, error) {
	var args []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return args, nil
		}
		if s[0] == '"' || s[0] == '`' {
			q, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("%w: unterminated quote", ErrUsage)
			}
			v, err := strconv.Unquote(q)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUsage, err)
			}
			args = append(args, v)
			s = s[len(q):]
			continue
		}
		word, rest, _ := strings.Cut(s, " ")
		args = append(args, word)
		s = rest
	}
}

func (app *Application) selectMatch(ctx context.Context, query string, forward bool) error {
	res, err := app.sync.Select(ctx, query, forward)
	if err != nil {
		return err
	}
	switch res.Outcome {
	case session.OutcomeApplied:
		fmt.Fprintf(app.out, "selected %d of %d\n", res.Index+1, res.Total)
	case session.OutcomeStale:
		fmt.Fprintf(app.out, "stale match: %v\n", res.Err)
	default:
		fmt.Fprintf(app.out, "not found: %q\n", query)
	}
	return nil
}

func (app *Application) listMatches(ctx context.Context, args []string) error {
	bounds, err := app.sync.FindAll(ctx, args[0])
	if err != nil {
		return err
	}
	return app.loop.Call(ctx, func() {
		for i, b := range bounds {
			text, err := app.doc.TextBetween(b)
			if err != nil {
				fmt.Fprintf(app.out, "%d: %v\n", i+1, err)
				continue
			}
			fmt.Fprintf(app.out, "%d: %q\n", i+1, text)
		}
	})
}

func (app *Application) show(ctx context.Context, _ []string) error {
	var werr error
	if err := app.loop.Call(ctx, func() { werr = WriteDocument(app.out, app.doc) }); err != nil {
		return err
	}
	return werr
}

func (app *Application) showSelection(ctx context.Context, _ []string) error {
	return app.loop.Call(ctx, func() {
		b, ok := app.doc.Selection().Current()
		if !ok {
			fmt.Fprintln(app.out, "selection: none")
			return
		}
		text, err := app.doc.TextBetween(b)
		if err != nil {
			fmt.Fprintf(app.out, "selection: %v\n", err)
			return
		}
		fmt.Fprintf(app.out, "selection: %q\n", text)
	})
}
