package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// SummaryLine is one flattened sample.
type SummaryLine struct {
	Name   string
	Labels string
	Value  float64
}

func (l SummaryLine) String() string {
	if l.Labels == "" {
		return fmt.Sprintf("%s %g", l.Name, l.Value)
	}
	return fmt.Sprintf("%s{%s} %g", l.Name, l.Labels, l.Value)
}

// Summarize gathers g and flattens counters and gauges; histograms report
// their sample count. Families with a prefix other than prefix are skipped.
func Summarize(g prometheus.Gatherer, prefix string) ([]SummaryLine, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []SummaryLine
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			value, ok := sampleValue(mf.GetType(), m)
			if !ok {
				continue
			}
			lines = append(lines, SummaryLine{
				Name:   mf.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  value,
			})
		}
	}
	slices.SortFunc(lines, func(a, b SummaryLine) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})
	return lines, nil
}

func sampleValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue(), true
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount()), true
	default:
		return 0, false
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return strings.Join(parts, ",")
}
