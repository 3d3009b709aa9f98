package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/k3a/html2text"

	"github.com/tphakala/retinascan/internal/notification"
	"github.com/tphakala/retinascan/internal/render"
)

// Terminal mirrors a Page and prints every changed region as plain text.
type Terminal struct {
	*Page

	mu  sync.Mutex
	out io.Writer
}

// NewTerminal wraps page and prints to out.
func NewTerminal(page *Page, out io.Writer) *Terminal {
	return &Terminal{Page: page, out: out}
}

func (t *Terminal) print(fragment string) {
	text := Text(t.Page, fragment)
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, text)
}

// Text renders a page fragment as plain text.
func Text(p *Page, fragment string) string {
	return strings.TrimSpace(html2text.HTML2Text(p.HTML(fragment)))
}

// ShowAuth prints the logged-out navigation.
func (t *Terminal) ShowAuth() {
	t.Page.ShowAuth()
	t.print(FragmentNav)
}

// ShowDashboard prints the welcome line.
func (t *Terminal) ShowDashboard(username string) {
	t.Page.ShowDashboard(username)
	t.print(FragmentNav)
}

// ShowPreview prints the selected file name.
func (t *Terminal) ShowPreview(filename, dataURL string) {
	t.Page.ShowPreview(filename, dataURL)
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.out, "Selected: %s\n", filename)
}

// ShowLoading prints the loading indicator.
func (t *Terminal) ShowLoading() {
	t.Page.ShowLoading()
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, "Analyzing image...")
}

// ShowResult prints the prediction with text bars.
func (t *Terminal) ShowResult(r render.Result) {
	t.Page.ShowResult(r)

	var b strings.Builder
	fmt.Fprintf(&b, "Diagnosis: %s (confidence %s)\n", r.Label, r.Confidence)
	for _, bar := range r.Bars {
		fmt.Fprintf(&b, "  %-18s %-30s %s\n", bar.Label, TextBar(bar.Width, 30), bar.Confidence)
	}
	b.WriteString(r.Disclaimer)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, b.String())
}

// ShowHistory prints the history region.
func (t *Terminal) ShowHistory(h render.History) {
	t.Page.ShowHistory(h)
	t.print(FragmentHistory)
}

// SetToasts prints newly shown toasts.
func (t *Terminal) SetToasts(toasts []notification.Toast) {
	before := t.Page.Snapshot().Toasts
	t.Page.SetToasts(toasts)

	seen := make(map[string]bool, len(before))
	for _, tv := range before {
		seen[tv.ID] = true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range toasts {
		if !seen[toasts[i].ID] {
			_, _ = fmt.Fprintf(t.out, "[%s] %s\n", toasts[i].Type, toasts[i].Message)
		}
	}
}

// TextBar draws a width-character bar filled in proportion to percent.
func TextBar(percent float64, width int) string {
	filled := min(max(int(percent/100*float64(width)+0.5), 0), width)
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
