package insight

import "time"

// CycleSummary captures the outcome of one full analysis cycle:
// cache refresh, tiered OEE computation and change detection.
type CycleSummary struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	Duration          time.Duration `json:"duration"`
	Enterprises       int           `json:"enterprises"`
	MeasurementsKnown int           `json:"measurements_known"`
	OEEResults        int           `json:"oee_results"`
	TierCounts        map[int]int   `json:"tier_counts"`
	ChangeEvents      int           `json:"change_events"`
}

// Snapshot is a point-in-time view of the runner state, served by the
// insight status endpoint.
type Snapshot struct {
	StartedAt   time.Time     `json:"started_at"`
	Interval    time.Duration `json:"interval"`
	LastRunAt   time.Time     `json:"last_run_at"`
	LastError   string        `json:"last_error"`
	LastSummary *CycleSummary `json:"last_summary,omitempty"`
}
