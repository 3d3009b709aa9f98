package render

import "github.com/tphakala/retinascan/internal/api"

// Placeholder texts for the history region.
const (
	HistoryEmptyText   = "No prediction history yet"
	HistoryLoadingText = "Loading history..."
)

// HistoryItem is one rendered history card.
type HistoryItem struct {
	Label      string
	Confidence string // one decimal
	Date       string
}

// History is the rendered history region. Items is nil when Empty.
type History struct {
	Empty       bool
	Placeholder string
	Items       []HistoryItem
}

// RenderHistory keeps backend order. An empty slice yields the placeholder.
func RenderHistory(entries []api.HistoryEntry, f *Formatter) History {
	if len(entries) == 0 {
		return History{Empty: true, Placeholder: HistoryEmptyText}
	}
	if f == nil {
		f = DefaultFormatter()
	}
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Label:      e.Label,
			Confidence: f.Percent1(e.Confidence),
			Date:       f.DateTime(e.Timestamp),
		})
	}
	return History{Items: items}
}
