package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/retinascan/internal/api"
)

func TestSeverityColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  string
	}{
		{0, "text-green-400"},
		{1, "text-yellow-400"},
		{2, "text-orange-400"},
		{3, "text-red-400"},
		{4, "text-red-600"},
		{5, NeutralColor},
		{-1, NeutralColor},
		{42, NeutralColor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityColor(tt.level), "level %d", tt.level)
	}
}

func TestGradeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No DR", GradeLabel(0))
	assert.Equal(t, "Proliferative DR", GradeLabel(4))
	assert.Equal(t, UnknownGrade, GradeLabel(7))
	assert.Len(t, GradeLabels(), MaxSeverity+1)
}

func TestRenderResult(t *testing.T) {
	t.Parallel()

	p := &api.Prediction{
		Label:         "Severe",
		Confidence:    64.12345,
		SeverityLevel: 3,
		Scores: api.Scores{
			{Label: "Severe", Confidence: 64.12345},
			{Label: "Moderate", Confidence: 20.5},
			{Label: "Proliferative DR", Confidence: 10},
			{Label: "Mild", Confidence: 5.37655},
		},
	}

	r := RenderResult(p, nil)
	assert.Equal(t, "Severe", r.Label)
	assert.Equal(t, "64.12%", r.Confidence)
	assert.Equal(t, "text-red-400", r.ColorClass)
	assert.Equal(t, "Severe", r.Grade)
	assert.Equal(t, Disclaimer, r.Disclaimer)

	require.Len(t, r.Bars, len(p.Scores), "one bar per score")
	for i, s := range p.Scores {
		assert.Equal(t, s.Label, r.Bars[i].Label, "bar %d out of order", i)
		assert.InDelta(t, s.Confidence, r.Bars[i].Width, 1e-12, "bar width is unrounded")
	}
	assert.Equal(t, "5.38%", r.Bars[3].Confidence)
}

func TestRenderResult_UnmappedSeverity(t *testing.T) {
	t.Parallel()

	r := RenderResult(&api.Prediction{Label: "Other", Confidence: 50, SeverityLevel: 9, Scores: api.Scores{}}, nil)
	assert.Equal(t, NeutralColor, r.ColorClass)
	assert.Empty(t, r.Bars)
	assert.Equal(t, Disclaimer, r.Disclaimer)
}

func TestRenderHistory(t *testing.T) {
	t.Parallel()

	empty := RenderHistory(nil, nil)
	assert.True(t, empty.Empty)
	assert.Equal(t, HistoryEmptyText, empty.Placeholder)
	assert.NotEqual(t, HistoryLoadingText, empty.Placeholder)
	assert.Nil(t, empty.Items)

	entries := []api.HistoryEntry{
		{Label: "Mild", Confidence: 55.57, Timestamp: time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)},
		{Label: "No DR", Confidence: 99.96, Timestamp: time.Date(2023, 12, 31, 9, 5, 0, 0, time.UTC)},
	}
	h := RenderHistory(entries, nil)
	require.Len(t, h.Items, 2)
	assert.False(t, h.Empty)
	assert.Equal(t, HistoryItem{Label: "Mild", Confidence: "55.6%", Date: "Mar 5, 2024, 02:07 PM"}, h.Items[0])
	assert.Equal(t, "100.0%", h.Items[1].Confidence)
	assert.Equal(t, "Dec 31, 2023, 09:05 AM", h.Items[1].Date)

	undated := RenderHistory([]api.HistoryEntry{{Label: "Severe", Confidence: 90}}, nil)
	assert.False(t, undated.Empty)
	require.Len(t, undated.Items, 1)
	assert.Equal(t, UnknownDate, undated.Items[0].Date)
}

func TestFormatter_LocaleAndZone(t *testing.T) {
	t.Parallel()

	de, err := NewFormatter("de-DE", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "71,25%", de.Percent2(71.25))
	assert.Equal(t, "Mar 5, 2024, 02:07 PM", de.DateTime(time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)), "dates stay en-US")
	assert.Equal(t, UnknownDate, de.DateTime(time.Time{}))

	helsinki, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	f, err := NewFormatter("en-US", helsinki)
	require.NoError(t, err)
	assert.Equal(t, "Jan 1, 2024, 02:00 AM", f.DateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = NewFormatter("!!", nil)
	assert.Error(t, err)
}
