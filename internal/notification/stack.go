package notification

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
)

// Defaults match the original toast timing.
const (
	DefaultDuration = 3 * time.Second
	DefaultFade     = 300 * time.Millisecond

	// DefaultChannelBufferSize is the per-subscriber event buffer
	DefaultChannelBufferSize = 32
)

// ErrToastNotFound is returned by Dismiss for unknown IDs
var ErrToastNotFound = errors.Newf("toast not found").Component("notification").Category(errors.CategoryNotFound).Build()

// EventKind describes a toast lifecycle change
type EventKind string

const (
	EventShown   EventKind = "shown"
	EventFading  EventKind = "fading"
	EventRemoved EventKind = "removed"
)

// Event is delivered to subscribers on each lifecycle change
type Event struct {
	Kind  EventKind
	Toast Toast
}

// StackConfig controls toast timing
type StackConfig struct {
	Duration time.Duration
	Fade     time.Duration
}

type entry struct {
	toast Toast
	timer *time.Timer
}

type subscriber struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

// Stack keeps the currently visible toasts, oldest first. New toasts are
// appended; they never replace existing ones.
type Stack struct {
	duration time.Duration
	fade     time.Duration

	mu      sync.Mutex
	entries []*entry
	stopped bool

	subscribersMu sync.RWMutex
	subscribers   []*subscriber

	ctx    context.Context
	cancel context.CancelFunc
	logger logger.Logger
}

// NewStack creates a stack. Nil config or non-positive values fall back to the defaults.
func NewStack(cfg *StackConfig) *Stack {
	duration, fade := DefaultDuration, DefaultFade
	if cfg != nil {
		if cfg.Duration > 0 {
			duration = cfg.Duration
		}
		if cfg.Fade > 0 {
			fade = cfg.Fade
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Stack{
		duration: duration,
		fade:     fade,
		ctx:      ctx,
		cancel:   cancel,
		logger:   GetLogger(),
	}
}

// Lifetime is the time from Show until removal for a default toast.
func (s *Stack) Lifetime() time.Duration {
	return s.duration + s.fade
}

// Success shows a success toast
func (s *Stack) Success(message string) *Toast {
	return s.Show(NewToast(message, ToastTypeSuccess))
}

// Error shows an error toast
func (s *Stack) Error(message string) *Toast {
	return s.Show(NewToast(message, ToastTypeError))
}

// Info shows an info toast
func (s *Stack) Info(message string) *Toast {
	return s.Show(NewToast(message, ToastTypeInfo))
}

// Show pushes t onto the stack and schedules its fade and removal.
// After Stop the toast is returned but never displayed.
func (s *Stack) Show(t *Toast) *Toast {
	if t.Duration <= 0 {
		t.Duration = s.duration
	}
	t.State = ToastVisible

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return t
	}
	id := t.ID
	e := &entry{toast: *t}
	e.timer = time.AfterFunc(t.Duration, func() { s.beginFade(id) })
	s.entries = append(s.entries, e)
	snapshot := e.toast
	s.mu.Unlock()

	s.logger.Debug("toast shown",
		logger.String("toast_id", id),
		logger.String("type", string(t.Type)),
		logger.String("message", t.Message))
	s.broadcast(Event{Kind: EventShown, Toast: snapshot})
	return t
}

func (s *Stack) beginFade(id string) {
	s.mu.Lock()
	e := s.find(id)
	if e == nil || s.stopped {
		s.mu.Unlock()
		return
	}
	e.toast.State = ToastFading
	e.timer = time.AfterFunc(s.fade, func() { s.remove(id) })
	snapshot := e.toast
	s.mu.Unlock()

	s.broadcast(Event{Kind: EventFading, Toast: snapshot})
}

func (s *Stack) remove(id string) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.entries, func(e *entry) bool { return e.toast.ID == id })
	if idx < 0 || s.stopped {
		s.mu.Unlock()
		return
	}
	e := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	e.toast.State = ToastRemoved
	snapshot := e.toast
	s.mu.Unlock()

	s.broadcast(Event{Kind: EventRemoved, Toast: snapshot})
}

// Dismiss removes a toast immediately
func (s *Stack) Dismiss(id string) error {
	s.mu.Lock()
	e := s.find(id)
	if e == nil {
		s.mu.Unlock()
		return ErrToastNotFound
	}
	e.timer.Stop()
	s.mu.Unlock()

	s.remove(id)
	return nil
}

// find must be called with mu held
func (s *Stack) find(id string) *entry {
	for _, e := range s.entries {
		if e.toast.ID == id {
			return e
		}
	}
	return nil
}

// Visible returns a snapshot of the stack, oldest first. Fading toasts are included.
func (s *Stack) Visible() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.toast)
	}
	return out
}

// Len returns the number of toasts on screen
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Subscribe returns a channel of lifecycle events and a context that is
// cancelled on Unsubscribe or Stop. Events are dropped for slow readers.
func (s *Stack) Subscribe() (<-chan Event, context.Context) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	ctx, cancel := context.WithCancel(s.ctx)
	sub := &subscriber{
		ch:     make(chan Event, DefaultChannelBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.subscribers = append(s.subscribers, sub)
	return sub.ch, ctx
}

// Unsubscribe cancels the subscriber's context. The channel is not closed.
func (s *Stack) Unsubscribe(ch <-chan Event) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()

	for i, sub := range s.subscribers {
		if sub.ch == ch {
			sub.cancel()
			s.subscribers = slices.Delete(s.subscribers, i, i+1)
			return
		}
	}
}

func (s *Stack) broadcast(ev Event) {
	s.subscribersMu.RLock()
	defer s.subscribersMu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.ctx.Err() != nil {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			s.logger.Warn("dropping toast event for slow subscriber",
				logger.String("toast_id", ev.Toast.ID),
				logger.String("event", string(ev.Kind)))
		}
	}
}

// Stop cancels all pending timers and subscriptions and clears the stack.
func (s *Stack) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for _, e := range s.entries {
		e.timer.Stop()
	}
	s.entries = nil
	s.mu.Unlock()

	s.subscribersMu.Lock()
	for _, sub := range s.subscribers {
		sub.cancel()
	}
	s.subscribers = nil
	s.subscribersMu.Unlock()

	s.cancel()
}
