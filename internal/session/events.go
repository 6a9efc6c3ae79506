package session

import (
	"context"
	"fmt"

	"github.com/dshills/richfind/internal/event"
)

// Topics the session subscribes to.
const (
	TopicContentChanged event.Topic = "document.content.changed"
	TopicModeChanging   event.Topic = "mode.changing"
	TopicKey            event.Topic = "input.key"
	TopicPointer        event.Topic = "input.pointer"
	TopicNext           event.Topic = "search.next"
	TopicPrevious       event.Topic = "search.previous"
	TopicExec           event.Topic = "search.exec"
	TopicReplace        event.Topic = "search.replace"
	TopicOpenDialog     event.Topic = "search.dialog.open"
	TopicDestroyed      event.Topic = "editor.destroyed"
)

// ExecPayload is the payload of TopicExec.
type ExecPayload struct {
	Query string
	// Next selects the following match; false selects the preceding one.
	Next bool
}

// OpenPayload is the payload of TopicOpenDialog.
type OpenPayload struct {
	Replace bool
}

// ReplacePayload is the optional payload of TopicReplace. Without it the
// dialog's query and replacement are used.
type ReplacePayload struct {
	Query       string
	Replacement string
}

// Attach subscribes the session to bus. It does nothing when search is
// disabled in the configuration or the session is already attached.
func (s *Session) Attach(bus *event.Bus) error {
	if !s.cfg.Enabled || s.destroyed || s.bus != nil {
		return nil
	}
	handlers := []struct {
		topic event.Topic
		fn    event.Handler
	}{
		{TopicContentChanged, s.onContentChanged},
		{TopicModeChanging, s.onModeChanging},
		{TopicKey, s.onInput},
		{TopicPointer, s.onInput},
		{TopicNext, s.onNavigate(true)},
		{TopicPrevious, s.onNavigate(false)},
		{TopicExec, s.onExec},
		{TopicReplace, s.onReplace},
		{TopicOpenDialog, s.onOpenDialog},
		{TopicDestroyed, s.onDestroyed},
	}
	s.bus = bus
	for _, h := range handlers {
		sub, err := bus.Subscribe(h.topic, h.fn)
		if err != nil {
			s.Detach()
			return fmt.Errorf("subscribe %s: %w", h.topic, err)
		}
		s.subs = append(s.subs, sub)
	}
	s.logger.Debug("attached", "subscriptions", len(s.subs))
	return nil
}

// Detach removes every subscription made by Attach.
func (s *Session) Detach() {
	if s.bus == nil {
		return
	}
	for _, sub := range s.subs {
		_ = s.bus.Unsubscribe(sub)
	}
	s.subs = nil
	s.bus = nil
}

func (s *Session) onContentChanged(context.Context, event.Event) error {
	s.Invalidate()
	return nil
}

func (s *Session) onModeChanging(context.Context, event.Event) error {
	if s.host.UI != nil {
		s.host.UI.Close()
	}
	return nil
}

// onInput drops the selection markers the dialog left behind and keeps the
// counter current while the dialog is open.
func (s *Session) onInput(context.Context, event.Event) error {
	ui := s.host.UI
	if ui == nil {
		return nil
	}
	if ui.HasSelectionInfo() {
		s.host.Selection.RemoveMarkers()
		ui.ClearSelectionInfo()
	}
	if ui.IsOpen() {
		s.RefreshCounters()
	}
	return nil
}

func (s *Session) onNavigate(forward bool) event.Handler {
	return func(context.Context, event.Event) error {
		ui := s.host.UI
		if ui == nil {
			return nil
		}
		if !ui.IsOpen() {
			ui.Open(false)
			return nil
		}
		s.FindAndSelect(ui.Query(), forward)
		return nil
	}
}

func (s *Session) onExec(_ context.Context, ev event.Event) error {
	var p ExecPayload
	switch v := ev.Payload.(type) {
	case ExecPayload:
		p = v
	case *ExecPayload:
		if v == nil {
			return ErrBadPayload
		}
		p = *v
	default:
		return fmt.Errorf("%w: %T", ErrBadPayload, ev.Payload)
	}
	s.FindAndSelect(p.Query, p.Next)
	return nil
}

func (s *Session) onReplace(_ context.Context, ev event.Event) error {
	var p ReplacePayload
	switch v := ev.Payload.(type) {
	case ReplacePayload:
		p = v
	case *ReplacePayload:
		if v != nil {
			p = *v
		}
	case nil:
		ui := s.host.UI
		if ui == nil {
			return nil
		}
		p = ReplacePayload{Query: ui.Query(), Replacement: ui.Replacement()}
	default:
		return fmt.Errorf("%w: %T", ErrBadPayload, ev.Payload)
	}
	if s.readOnly {
		return nil
	}
	s.FindAndReplace(p.Query, p.Replacement).Then(func(ReplaceResult) {
		s.RefreshCounters()
	})
	return nil
}

func (s *Session) onOpenDialog(_ context.Context, ev event.Event) error {
	var p OpenPayload
	switch v := ev.Payload.(type) {
	case OpenPayload:
		p = v
	case *OpenPayload:
		if v != nil {
			p = *v
		}
	case nil:
	default:
		return fmt.Errorf("%w: %T", ErrBadPayload, ev.Payload)
	}
	ui := s.host.UI
	if ui == nil {
		return nil
	}
	if p.Replace && s.readOnly {
		s.logger.Debug("replace dialog blocked in read-only mode")
		return nil
	}
	ui.Open(p.Replace)
	return nil
}

func (s *Session) onDestroyed(context.Context, event.Event) error {
	s.Destroy()
	return nil
}
