package insight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

const cycleTimeout = 60 * time.Second

type Runner struct {
	service  *Service
	log      *logger.Logger
	interval time.Duration

	runMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	lastError   string
	lastSummary *CycleSummary
}

func NewRunner(service *Service, log *logger.Logger, interval time.Duration) *Runner {
	return &Runner{
		service:   service,
		log:       log,
		interval:  interval,
		startedAt: time.Now(),
	}
}

func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run one cycle immediately so status endpoints have data before the
	// first tick.
	if _, err := r.RunOnce(ctx); err != nil && ctx.Err() != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				// RunOnce already stores error state and logs context.
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) RunOnce(ctx context.Context) (*CycleSummary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	summary, err := r.service.EvaluateCycle(cycleCtx)
	runAt := time.Now()

	if err != nil {
		wrappedErr := fmt.Errorf("insight cycle failed: %w", err)
		r.updateFailure(runAt, wrappedErr)
		r.log.Error("Insight cycle failed", wrappedErr)
		return nil, wrappedErr
	}

	r.updateSuccess(runAt, summary)

	if summary.MeasurementsKnown == 0 {
		r.log.Warn("Insight cycle completed with empty schema cache")
		return summary, nil
	}

	r.log.Info(
		"Insight cycle completed",
		"duration", summary.Duration.String(),
		"enterprises", summary.Enterprises,
		"measurements", summary.MeasurementsKnown,
		"oee_results", summary.OEEResults,
		"change_events", summary.ChangeEvents,
	)

	return summary, nil
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := Snapshot{
		StartedAt: r.startedAt,
		Interval:  r.interval,
		LastRunAt: r.lastRunAt,
		LastError: r.lastError,
	}

	if r.lastSummary != nil {
		copiedSummary := *r.lastSummary
		copiedSummary.TierCounts = make(map[int]int, len(r.lastSummary.TierCounts))
		for tier, count := range r.lastSummary.TierCounts {
			copiedSummary.TierCounts[tier] = count
		}
		snapshot.LastSummary = &copiedSummary
	}

	return snapshot
}

func (r *Runner) updateFailure(runAt time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = err.Error()
}

func (r *Runner) updateSuccess(runAt time.Time, summary *CycleSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = runAt
	r.lastError = ""
	r.lastSummary = summary
}
