// Package view provides the typed page binding the controller renders into,
// plus a terminal rendering of the same page.
package view

import (
	"bytes"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/render"
)

// Tab selects the form shown in the unauthenticated view
type Tab string

const (
	TabLogin    Tab = "login"
	TabRegister Tab = "register"
)

// ResultRegion is the sub-state of the result area
type ResultRegion string

const (
	RegionIdle    ResultRegion = "idle"
	RegionLoading ResultRegion = "loading"
	RegionResults ResultRegion = "results"
)

// Preview is the selected image shown before analysis
type Preview struct {
	Filename string
	Source   template.URL
}

// ToastView is a toast as drawn on the page
type ToastView struct {
	ID      string
	Message string
	Type    notification.ToastType
	Class   string
	Fading  bool
}

// State is everything the page shows. Exactly one of the auth and dashboard
// sections is visible, selected by Authenticated.
type State struct {
	Authenticated  bool
	Username       string
	Tab            Tab
	Preview        *Preview
	AnalyzeEnabled bool
	ResultRegion   ResultRegion
	Result         *render.Result
	HistoryLoading bool
	History        render.History
	Toasts         []ToastView
}

// Page is the view binding. It is created once and mutated only through its
// named show/hide/render methods. Safe for concurrent use.
type Page struct {
	mu    sync.RWMutex
	state State
	tmpl  *template.Template
}

// NewPage returns a page in its initial state: unauthenticated, login tab
// active, result region idle.
func NewPage() (*Page, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, errors.New(err).Component("view").Category(errors.CategoryConfiguration).Build()
	}
	return &Page{
		tmpl: tmpl,
		state: State{
			Tab:          TabLogin,
			ResultRegion: RegionIdle,
			History:      render.History{Empty: true, Placeholder: render.HistoryEmptyText},
		},
	}, nil
}

func (p *Page) update(fn func(s *State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.state)
}

// ShowAuth shows the login/register section and hides the dashboard.
func (p *Page) ShowAuth() {
	p.update(func(s *State) {
		s.Authenticated = false
		s.Username = ""
		s.Preview = nil
		s.AnalyzeEnabled = false
		s.ResultRegion = RegionIdle
		s.Result = nil
		s.HistoryLoading = false
		s.History = render.History{Empty: true, Placeholder: render.HistoryEmptyText}
	})
}

// ShowDashboard shows the authenticated section for username.
func (p *Page) ShowDashboard(username string) {
	p.update(func(s *State) {
		s.Authenticated = true
		s.Username = username
	})
}

// SwitchTab activates the login or register form.
func (p *Page) SwitchTab(tab Tab) {
	p.update(func(s *State) {
		if tab != TabRegister {
			tab = TabLogin
		}
		s.Tab = tab
	})
}

// ShowPreview displays the selected image and enables analysis.
func (p *Page) ShowPreview(filename, dataURL string) {
	p.update(func(s *State) {
		s.Preview = &Preview{Filename: filename, Source: template.URL(dataURL)} //nolint:gosec // data URL built by upload.PendingImage
		s.AnalyzeEnabled = true
	})
}

// HidePreview removes the preview and disables analysis.
func (p *Page) HidePreview() {
	p.update(func(s *State) {
		s.Preview = nil
		s.AnalyzeEnabled = false
	})
}

// SetAnalyzeEnabled toggles the analyze control.
func (p *Page) SetAnalyzeEnabled(enabled bool) {
	p.update(func(s *State) { s.AnalyzeEnabled = enabled })
}

// ShowIdle hides any prediction and shows the idle placeholder.
func (p *Page) ShowIdle() {
	p.update(func(s *State) {
		s.ResultRegion = RegionIdle
		s.Result = nil
	})
}

// ShowLoading switches the result region to the loading indicator.
func (p *Page) ShowLoading() {
	p.update(func(s *State) {
		s.ResultRegion = RegionLoading
		s.Result = nil
	})
}

// ShowResult renders a prediction.
func (p *Page) ShowResult(r render.Result) {
	p.update(func(s *State) {
		s.ResultRegion = RegionResults
		s.Result = &r
	})
}

// ShowHistoryLoading marks the history region as loading.
func (p *Page) ShowHistoryLoading() {
	p.update(func(s *State) { s.HistoryLoading = true })
}

// ShowHistory renders the history region.
func (p *Page) ShowHistory(h render.History) {
	p.update(func(s *State) {
		s.HistoryLoading = false
		s.History = h
	})
}

// SetToasts replaces the drawn toast stack.
func (p *Page) SetToasts(toasts []notification.Toast) {
	views := make([]ToastView, 0, len(toasts))
	for i := range toasts {
		t := &toasts[i]
		views = append(views, ToastView{
			ID:      t.ID,
			Message: t.Message,
			Type:    t.Type,
			Class:   t.StyleClass(),
			Fading:  t.State == notification.ToastFading,
		})
	}
	p.update(func(s *State) { s.Toasts = views })
}

// Snapshot returns a copy of the current state.
func (p *Page) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.state
	s.Toasts = append([]ToastView(nil), p.state.Toasts...)
	if p.state.History.Items != nil {
		s.History.Items = append([]render.HistoryItem(nil), p.state.History.Items...)
	}
	return s
}

// Render writes the full HTML document.
func (p *Page) Render(w io.Writer) error {
	return p.RenderFragment(w, FragmentPage)
}

// RenderFragment writes one named region of the page.
func (p *Page) RenderFragment(w io.Writer, name string) error {
	state := p.Snapshot()
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, &state); err != nil {
		return errors.New(err).
			Component("view").
			Category(errors.CategoryGeneric).
			Context("fragment", name).
			Build()
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// HTML renders a fragment to a string, or the error text on failure.
func (p *Page) HTML(name string) string {
	var b strings.Builder
	if err := p.RenderFragment(&b, name); err != nil {
		return err.Error()
	}
	return b.String()
}
