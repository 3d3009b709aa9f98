package view

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/tphakala/retinascan/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Fragment names usable with Page.RenderFragment.
const (
	FragmentPage    = "page"
	FragmentNav     = "nav"
	FragmentAuth    = "auth"
	FragmentUpload  = "upload"
	FragmentResult  = "result"
	FragmentHistory = "history"
	FragmentToasts  = "toasts"
)

var funcMap = template.FuncMap{
	"barWidth": func(width float64) template.CSS {
		return template.CSS("width: " + strconv.FormatFloat(width, 'f', -1, 64) + "%")
	},
	"disclaimerLead": func(s string) string {
		lead, _, found := strings.Cut(s, ":")
		if !found {
			return ""
		}
		return lead + ":"
	},
	"disclaimerBody": func(s string) string {
		if _, body, found := strings.Cut(s, ":"); found {
			return body
		}
		return s
	},
	"historyLoadingText": func() string { return render.HistoryLoadingText },
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse view templates: %w", err)
	}
	return tmpl, nil
}
