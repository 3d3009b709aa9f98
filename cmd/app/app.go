// Package app wires the client stack shared by the interactive and one-shot commands.
package app

import (
	"io"
	"sync"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/controller"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/httpclient"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/observability"
	"github.com/tphakala/retinascan/internal/render"
	"github.com/tphakala/retinascan/internal/view"
)

// App is a ready-to-use client: a controller rendering into a terminal view.
type App struct {
	Controller *controller.ViewController
	Terminal   *view.Terminal
	Metrics    *observability.Metrics
	Backend    *api.Client
	// Out is the serialized writer shared with the terminal view.
	Out io.Writer

	http   *httpclient.Client
	toasts *notification.Stack
}

// New builds the client stack from settings, printing view changes to out.
func New(settings *conf.Settings, out io.Writer) (*App, error) {
	m, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	hc, err := httpclient.New(&httpclient.Config{
		Timeout:   settings.HTTP.Timeout,
		UserAgent: settings.HTTP.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	m.Client.Instrument(hc)

	backend, err := api.NewClient(settings.Server.URL, hc)
	if err != nil {
		hc.Close()
		return nil, err
	}

	loc, err := conf.LoadTimezone(settings.Display.Timezone)
	if err != nil {
		hc.Close()
		return nil, err
	}
	formatter, err := render.NewFormatter(settings.Display.Locale, loc)
	if err != nil {
		hc.Close()
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("locale", settings.Display.Locale).
			Build()
	}

	page, err := view.NewPage()
	if err != nil {
		hc.Close()
		return nil, err
	}
	out = &syncWriter{w: out}
	terminal := view.NewTerminal(page, out)

	toasts := notification.NewStack(&notification.StackConfig{
		Duration: settings.Notification.Duration,
		Fade:     settings.Notification.Fade,
	})

	c, err := controller.New(controller.Config{
		Backend:   backend,
		View:      terminal,
		Toasts:    toasts,
		Formatter: formatter,
		Metrics:   m.Client,
	})
	if err != nil {
		toasts.Stop()
		hc.Close()
		return nil, err
	}

	return &App{
		Controller: c,
		Terminal:   terminal,
		Metrics:    m,
		Backend:    backend,
		Out:        out,
		http:       hc,
		toasts:     toasts,
	}, nil
}

// Close stops background work and releases connections.
func (a *App) Close() {
	a.Controller.Close()
	a.toasts.Stop()
	a.http.Close()
}

// syncWriter serializes writes from the view and the command loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
