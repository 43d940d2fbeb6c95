package obs

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Metrics tracks batch-run counters using atomics. A single instance is
// shared by all workers of a run.
type Metrics struct {
	searches         atomic.Int64
	candidates       atomic.Int64
	staysPriced      atomic.Int64
	staysUnavailable atomic.Int64
	quoteCacheHits   atomic.Int64
	resultRows       atomic.Int64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncSearches increments the processed-search counter.
func (m *Metrics) IncSearches() {
	m.searches.Add(1)
}

// AddCandidates adds to the selected-candidate counter.
func (m *Metrics) AddCandidates(n int) {
	m.candidates.Add(int64(n))
}

// IncStaysPriced increments the priced-stay counter.
func (m *Metrics) IncStaysPriced() {
	m.staysPriced.Add(1)
}

// IncStaysUnavailable increments the rejected-stay counter.
func (m *Metrics) IncStaysUnavailable() {
	m.staysUnavailable.Add(1)
}

// IncQuoteCacheHits increments the quote cache hit counter.
func (m *Metrics) IncQuoteCacheHits() {
	m.quoteCacheHits.Add(1)
}

// AddResultRows adds to the emitted-row counter.
func (m *Metrics) AddResultRows(n int) {
	m.resultRows.Add(int64(n))
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Searches:         m.searches.Load(),
		Candidates:       m.candidates.Load(),
		StaysPriced:      m.staysPriced.Load(),
		StaysUnavailable: m.staysUnavailable.Load(),
		QuoteCacheHits:   m.quoteCacheHits.Load(),
		ResultRows:       m.resultRows.Load(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Searches         int64
	Candidates       int64
	StaysPriced      int64
	StaysUnavailable int64
	QuoteCacheHits   int64
	ResultRows       int64
}

// WriteTo writes the current counters to w in Prometheus text exposition
// format, so a scheduled run can drop them somewhere a node exporter's
// textfile collector picks up.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	s := m.Snapshot()

	counters := []struct {
		name  string
		help  string
		value int64
	}{
		{"searches_total", "Total number of searches processed", s.Searches},
		{"candidates_selected_total", "Total number of candidate properties selected", s.Candidates},
		{"stays_priced_total", "Total number of stays priced successfully", s.StaysPriced},
		{"stays_unavailable_total", "Total number of stays rejected as unavailable", s.StaysUnavailable},
		{"quote_cache_hits_total", "Total number of quote cache hits", s.QuoteCacheHits},
		{"result_rows_total", "Total number of result rows emitted", s.ResultRows},
	}

	var written int64
	for _, c := range counters {
		n, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.value)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
