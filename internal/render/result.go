// Package render turns backend results into view models. Everything here is
// a pure function of its input.
package render

import (
	"math"

	"github.com/tphakala/retinascan/internal/api"
)

// Disclaimer is appended to every rendered prediction.
const Disclaimer = "Note: This is an AI-based prediction. Please consult with a healthcare professional for proper diagnosis and treatment."

// Bar is one proportional bar of the score breakdown.
type Bar struct {
	Label      string
	Confidence string  // two decimals
	Width      float64 // unrounded percent, used as the bar width
}

// Result is the rendered prediction.
type Result struct {
	Label         string
	Confidence    string
	SeverityLevel int
	Grade         string
	ColorClass    string
	Bars          []Bar
	Disclaimer    string
}

// RenderResult builds the result view. Bars follow the backend order.
func RenderResult(p *api.Prediction, f *Formatter) Result {
	if f == nil {
		f = DefaultFormatter()
	}
	bars := make([]Bar, 0, len(p.Scores))
	for _, s := range p.Scores {
		bars = append(bars, Bar{
			Label:      s.Label,
			Confidence: f.Percent2(s.Confidence),
			Width:      clampWidth(s.Confidence),
		})
	}
	return Result{
		Label:         p.Label,
		Confidence:    f.Percent2(p.Confidence),
		SeverityLevel: p.SeverityLevel,
		Grade:         GradeLabel(p.SeverityLevel),
		ColorClass:    SeverityColor(p.SeverityLevel),
		Bars:          bars,
		Disclaimer:    Disclaimer,
	}
}

func clampWidth(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
