package performance

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Tracker tracks per-parser run metrics across scrape cycles
type Tracker struct {
	mu sync.RWMutex

	TotalCycles   int
	TotalDuration time.Duration
	LastCycleAt   time.Time
	LastCycleSize int // props in store after the last cycle

	parsers map[string]*ParserStats
}

// ParserStats is the running tally for one parser
type ParserStats struct {
	Runs          int
	Failures      int
	TotalDuration time.Duration
	LastDuration  time.Duration
	LastError     string
	LastRunAt     time.Time
}

var globalTracker = NewTracker()

func NewTracker() *Tracker {
	return &Tracker{parsers: make(map[string]*ParserStats)}
}

// GetTracker returns the global performance tracker
func GetTracker() *Tracker {
	return globalTracker
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalCycles = 0
	t.TotalDuration = 0
	t.LastCycleAt = time.Time{}
	t.LastCycleSize = 0
	t.parsers = make(map[string]*ParserStats)
}

// RecordParserRun records one ParseOnce call
func (t *Tracker) RecordParserRun(parser string, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.parsers[parser]
	if !ok {
		st = &ParserStats{}
		t.parsers[parser] = st
	}
	st.Runs++
	st.TotalDuration += duration
	st.LastDuration = duration
	st.LastRunAt = time.Now()
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
}

// RecordCycle records a finished scrape cycle
func (t *Tracker) RecordCycle(duration time.Duration, props int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalCycles++
	t.TotalDuration += duration
	t.LastCycleAt = time.Now()
	t.LastCycleSize = props
}

// PrintSummary logs the collected metrics
func (t *Tracker) PrintSummary() {
	m := t.GetMetrics()
	if m.Overall.TotalCycles == 0 {
		slog.Info("No performance data collected yet")
		return
	}

	slog.Info("Overall Statistics",
		"cycles", m.Overall.TotalCycles,
		"avg_cycle", m.Overall.AvgCycleDuration,
		"last_cycle_props", m.Overall.LastCycleProps)
	for _, p := range m.Parsers {
		slog.Info("Parser Statistics",
			"parser", p.Name,
			"runs", p.Runs,
			"success_rate", p.SuccessRate,
			"avg_duration", p.AvgDuration,
			"last_error", p.LastError)
	}
}

// MetricsResponse represents metrics in JSON format
type MetricsResponse struct {
	Overall struct {
		TotalCycles      int       `json:"total_cycles"`
		AvgCycleDuration string    `json:"avg_cycle_duration"`
		LastCycleAt      time.Time `json:"last_cycle_at"`
		LastCycleProps   int       `json:"last_cycle_props"`
	} `json:"overall"`
	Parsers []ParserMetrics `json:"parsers"`
}

type ParserMetrics struct {
	Name         string    `json:"name"`
	Runs         int       `json:"runs"`
	Failures     int       `json:"failures"`
	SuccessRate  float64   `json:"success_rate"`
	AvgDuration  string    `json:"avg_duration"`
	LastDuration string    `json:"last_duration"`
	LastError    string    `json:"last_error,omitempty"`
	LastRunAt    time.Time `json:"last_run_at"`
}

// GetMetrics returns structured metrics for JSON API
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var resp MetricsResponse
	resp.Overall.TotalCycles = t.TotalCycles
	resp.Overall.LastCycleAt = t.LastCycleAt
	resp.Overall.LastCycleProps = t.LastCycleSize
	if t.TotalCycles > 0 {
		resp.Overall.AvgCycleDuration = (t.TotalDuration / time.Duration(t.TotalCycles)).String()
	}

	resp.Parsers = make([]ParserMetrics, 0, len(t.parsers))
	for name, st := range t.parsers {
		pm := ParserMetrics{
			Name:         name,
			Runs:         st.Runs,
			Failures:     st.Failures,
			LastDuration: st.LastDuration.String(),
			LastError:    st.LastError,
			LastRunAt:    st.LastRunAt,
		}
		if st.Runs > 0 {
			pm.SuccessRate = float64(st.Runs-st.Failures) / float64(st.Runs) * 100
			pm.AvgDuration = (st.TotalDuration / time.Duration(st.Runs)).String()
		}
		resp.Parsers = append(resp.Parsers, pm)
	}
	sort.Slice(resp.Parsers, func(i, j int) bool { return resp.Parsers[i].Name < resp.Parsers[j].Name })
	return resp
}
