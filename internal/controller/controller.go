// Package controller implements the client-side session and view state
// machine: it turns user actions into backend calls and renders the outcome.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/observability/metrics"
	"github.com/tphakala/retinascan/internal/render"
	"github.com/tphakala/retinascan/internal/upload"
)

// ViewState is the visible top-level section.
type ViewState int

const (
	Unauthenticated ViewState = iota
	Authenticated
)

func (v ViewState) String() string {
	if v == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the logged-in identity. An empty Username means no session.
type Session struct {
	Username string
}

// Active reports whether a user is logged in.
func (s Session) Active() bool { return s.Username != "" }

// Config holds the collaborators of a ViewController.
type Config struct {
	Backend   Backend
	View      View
	Toasts    *notification.Stack    // nil creates a stack with default timing
	Formatter *render.Formatter      // nil uses en-US in UTC
	Metrics   *metrics.ClientMetrics // optional
}

// ViewController owns the session, the pending image and the current view.
// All methods are safe for concurrent use; overlapping invocations of the
// same action are rejected with ErrBusy.
type ViewController struct {
	backend   Backend
	view      View
	toasts    *notification.Stack
	ownToasts bool
	formatter *render.Formatter
	metrics   *metrics.ClientMetrics
	logger    logger.Logger

	mu         sync.Mutex
	session    Session
	authGen    uint64 // bumped on every session change
	pending    *upload.PendingImage
	imageGen   uint64
	current    ViewState
	lastResult *api.Prediction

	guards     guards
	historySeq atomic.Uint64

	toastEvents <-chan notification.Event

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
	pump   sync.WaitGroup
	closed atomic.Bool
}

// New creates a controller and starts forwarding toast changes to the view.
// Close must be called to release its goroutines.
func New(cfg Config) (*ViewController, error) {
	if cfg.Backend == nil || cfg.View == nil {
		return nil, errors.Newf("controller requires a backend and a view").
			Component("controller").
			Category(errors.CategoryValidation).
			Build()
	}

	c := &ViewController{
		backend:   cfg.Backend,
		view:      cfg.View,
		toasts:    cfg.Toasts,
		formatter: cfg.Formatter,
		metrics:   cfg.Metrics,
		logger:    GetLogger(),
		guards:    newGuards(),
		current:   Unauthenticated,
	}
	if c.toasts == nil {
		c.toasts = notification.NewStack(nil)
		c.ownToasts = true
	}
	if c.formatter == nil {
		c.formatter = render.DefaultFormatter()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	events, subCtx := c.toasts.Subscribe()
	c.toastEvents = events
	c.pump.Go(func() { c.forwardToasts(subCtx, events) })

	return c, nil
}

// forwardToasts redraws the toast stack on every lifecycle event.
func (c *ViewController) forwardToasts(ctx context.Context, events <-chan notification.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		case <-events:
			c.view.SetToasts(c.toasts.Visible())
		}
	}
}

// Wait blocks until background work started so far (previews, history
// refreshes) has finished.
func (c *ViewController) Wait() {
	c.bg.Wait()
}

// Close cancels background work and waits for it.
func (c *ViewController) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.bg.Wait()
	c.toasts.Unsubscribe(c.toastEvents)
	if c.ownToasts {
		c.toasts.Stop()
	}
	c.pump.Wait()
}

// Session returns the current session.
func (c *ViewController) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// CurrentView returns the visible top-level section.
func (c *ViewController) CurrentView() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// PendingImage returns the selected image or nil.
func (c *ViewController) PendingImage() *upload.PendingImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// LastResult returns the most recently rendered prediction or nil.
func (c *ViewController) LastResult() *api.Prediction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Toasts returns the toast stack.
func (c *ViewController) Toasts() *notification.Stack {
	return c.toasts
}

// begin acquires the action guard. When busy it shows the info toast.
func (c *ViewController) begin(a Action) (func(), error) {
	release, ok := c.guards.tryAcquire(a)
	if !ok {
		c.logger.Debug("action rejected, already in flight", logger.String("action", string(a)))
		c.notify(notification.ToastTypeInfo, MsgBusy)
		c.record(a, metrics.OutcomeRejected, 0)
		return nil, ErrBusy
	}
	return release, nil
}

// goBackground runs fn unless the controller is closed.
func (c *ViewController) goBackground(fn func(ctx context.Context)) {
	if c.ctx.Err() != nil {
		return
	}
	c.bg.Go(func() { fn(c.ctx) })
}

func (c *ViewController) notify(t notification.ToastType, message string) {
	c.toasts.Show(notification.NewToast(message, t).WithComponent("controller"))
	if c.metrics != nil {
		c.metrics.RecordNotification(string(t))
	}
}

func (c *ViewController) record(a Action, outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordOperation(string(a), outcome, d)
	}
}

// failureMessage picks the toast text for a failed call.
func failureMessage(err error, fallback, transportMsg string) string {
	if api.IsTransport(err) {
		return transportMsg
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case api.IsTransport(err):
		return metrics.OutcomeTransport
	case errors.Is(err, ErrBusy):
		return metrics.OutcomeRejected
	default:
		if _, ok := api.AsFailure(err); ok {
			return metrics.OutcomeApplication
		}
		return metrics.OutcomeValidation
	}
}
