package relevance

import (
	"encoding/json"
	"log/slog"
	"sort"
	"time"
)

// Metrics summarizes one filtering run. Purely informational: nothing here
// feeds back into the filtering result.
type Metrics struct {
	TotalPages          int            `json:"totalPages"`
	FilteredPages       int            `json:"filteredPages"`
	ReductionPercentage float64        `json:"reductionPercentage"`
	AverageScore        float64        `json:"averageScore"`
	Duration            time.Duration  `json:"-"`
	SignalCounts        map[string]int `json:"signalCounts"`
	Keywords            []string       `json:"keywords"`
}

// MarshalJSON emits the run duration in milliseconds; time.Duration would
// otherwise serialize as nanoseconds.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	return json.Marshal(struct {
		plain
		ExecutionTimeMs int64 `json:"executionTimeMs"`
	}{plain(m), m.Duration.Milliseconds()})
}

// Filter scores every candidate page against the ticket, keeps pages at or
// above cfg.MinScore, sorts by score descending and truncates to
// cfg.MaxPages. The sort is stable: equal scores keep their input order.
//
// The returned metrics describe the same run. Filtering is pure computation
// over in-memory inputs; repeated calls with the same arguments produce the
// same ranking (only the measured duration varies).
func Filter(ticket Ticket, pages []Page, cfg Config) ([]Result, Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Metrics{}, err
	}

	start := time.Now()
	tc := ExtractContext(ticket)

	retained := make([]Result, 0, len(pages))
	for _, p := range pages {
		res := scorePage(tc, p, cfg)
		if res.Score >= cfg.MinScore {
			retained = append(retained, res)
		}
	}

	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].Score > retained[j].Score
	})
	if len(retained) > cfg.MaxPages {
		retained = retained[:cfg.MaxPages]
	}

	metrics := buildMetrics(len(pages), retained, tc, time.Since(start))

	slog.Debug("page filtering complete",
		"total", metrics.TotalPages,
		"retained", metrics.FilteredPages,
		"reduction_pct", metrics.ReductionPercentage,
		"avg_score", metrics.AverageScore)

	return retained, metrics, nil
}

func buildMetrics(total int, retained []Result, tc TicketContext, elapsed time.Duration) Metrics {
	m := Metrics{
		TotalPages:    total,
		FilteredPages: len(retained),
		Duration:      elapsed,
		SignalCounts:  make(map[string]int),
		Keywords:      tc.Keywords,
	}

	if total > 0 {
		m.ReductionPercentage = float64(total-len(retained)) / float64(total) * 100
	}

	var sum float64
	for _, r := range retained {
		sum += r.Score
		for _, signal := range r.MatchedBy {
			m.SignalCounts[signal]++
		}
	}
	if len(retained) > 0 {
		m.AverageScore = sum / float64(len(retained))
	}

	return m
}
