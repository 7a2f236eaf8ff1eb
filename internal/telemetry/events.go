package telemetry

import (
	"github.com/testwing/testwing/internal/relevance"
)

// Event names. Keep these stable; dashboards key on them.
const (
	EventFilterRun   = "filter_run"
	EventGenerateRun = "generate_run"
	EventEvaluateRun = "evaluate_run"
	EventError       = "error"
)

// FilterProperties converts filter metrics into event properties. Only
// counts and scores cross the wire; keywords and page content never do.
func FilterProperties(m relevance.Metrics) map[string]any {
	return map[string]any{
		"total_pages":    m.TotalPages,
		"filtered_pages": m.FilteredPages,
		"reduction_pct":  m.ReductionPercentage,
		"average_score":  m.AverageScore,
		"duration_ms":    m.Duration.Milliseconds(),
		"keyword_count":  len(m.Keywords),
	}
}
