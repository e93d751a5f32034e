package insight

import (
	"context"
	"fmt"
	"time"

	applicationPort "github.com/briananderson1222/EdgeMind-sub003/internal/application/port"
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/usecase"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
)

// SubjectTrendOEE is the subject carrying the per-cycle OEE report for the
// AI insight consumers.
const SubjectTrendOEE = "edgemind.trends.oee"

// Service runs one analysis cycle end to end: it refreshes the discovery
// caches, computes tiered OEE per enterprise and site, detects metric
// changes against the prior snapshot, and reports operational metrics to
// the observability backend.
type Service struct {
	schema       *discovery.SchemaCache
	hierarchy    *discovery.HierarchyCache
	analyzeOEE   *usecase.AnalyzeOEEUseCase
	detect       *usecase.DetectChangesUseCase
	metrics      applicationPort.MetricsPublisher
	logs         applicationPort.LogPublisher
	publisher    applicationPort.EventPublisher
	thresholdPct float64
}

func NewService(
	schema *discovery.SchemaCache,
	hierarchy *discovery.HierarchyCache,
	analyzeOEE *usecase.AnalyzeOEEUseCase,
	detect *usecase.DetectChangesUseCase,
	metrics applicationPort.MetricsPublisher,
	logs applicationPort.LogPublisher,
	publisher applicationPort.EventPublisher,
	thresholdPct float64,
) *Service {
	return &Service{
		schema:       schema,
		hierarchy:    hierarchy,
		analyzeOEE:   analyzeOEE,
		detect:       detect,
		metrics:      metrics,
		logs:         logs,
		publisher:    publisher,
		thresholdPct: thresholdPct,
	}
}

// EvaluateCycle executes a full cycle and returns its summary.
func (s *Service) EvaluateCycle(ctx context.Context) (*CycleSummary, error) {
	started := time.Now()

	// Stale topology does not invalidate the cycle: OEE and change
	// detection only need the schema cache, which the use cases refresh
	// themselves.
	_ = s.hierarchy.RefreshIfStale(ctx)

	oeeReport, err := s.analyzeOEE.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyze oee: %w", err)
	}

	changeReport, err := s.detect.Execute(ctx, s.thresholdPct)
	if err != nil {
		return nil, fmt.Errorf("detect changes: %w", err)
	}

	// The OEE report is fanned out on every cycle; consumers dedupe by
	// generated_at. A publish failure must not break the analysis loop.
	if s.publisher != nil && len(oeeReport.Results) > 0 {
		_ = s.publisher.PublishEvent(ctx, SubjectTrendOEE, oeeReport)
	}

	summary := &CycleSummary{
		GeneratedAt:       started,
		Duration:          time.Since(started),
		Enterprises:       len(s.schema.Enterprises()),
		MeasurementsKnown: len(s.schema.Measurements()),
		OEEResults:        len(oeeReport.Results),
		TierCounts:        make(map[int]int, 4),
		ChangeEvents:      len(changeReport.Events),
	}

	for _, result := range oeeReport.Results {
		summary.TierCounts[int(result.Calculation.Tier)]++
	}

	s.reportMetrics(ctx, summary)
	s.reportCycleLog(ctx, summary)

	return summary, nil
}

// reportMetrics publishes cycle metrics. Publishing failures are swallowed:
// observability must never break the analysis loop.
func (s *Service) reportMetrics(ctx context.Context, summary *CycleSummary) {
	if s.metrics == nil {
		return
	}

	now := time.Now()
	batch := []applicationPort.EngineMetric{
		{Name: "CycleDuration", Value: float64(summary.Duration.Milliseconds()), Unit: "ms", Timestamp: now},
		{Name: "MeasurementsDiscovered", Value: float64(summary.MeasurementsKnown), Unit: "count", Timestamp: now},
		{Name: "EnterprisesDiscovered", Value: float64(summary.Enterprises), Unit: "count", Timestamp: now},
		{Name: "OEEResultsComputed", Value: float64(summary.OEEResults), Unit: "count", Timestamp: now},
		{Name: "ChangeEventsDetected", Value: float64(summary.ChangeEvents), Unit: "count", Timestamp: now},
	}

	for tier, count := range summary.TierCounts {
		batch = append(batch, applicationPort.EngineMetric{
			Name:       "OEETierResults",
			Value:      float64(count),
			Unit:       "count",
			Dimensions: map[string]string{"Tier": fmt.Sprintf("%d", tier)},
			Timestamp:  now,
		})
	}

	_ = s.metrics.PublishBatch(ctx, batch)
}

// reportCycleLog ships one structured summary record per cycle to the ops
// log group. Same policy as metrics: failures never break the loop.
func (s *Service) reportCycleLog(ctx context.Context, summary *CycleSummary) {
	if s.logs == nil {
		return
	}

	_ = s.logs.Publish(ctx, applicationPort.LogEntry{
		Timestamp: summary.GeneratedAt,
		Level:     applicationPort.LogLevelInfo,
		Message:   "Trend analysis cycle completed",
		Fields: map[string]interface{}{
			"duration_ms":        summary.Duration.Milliseconds(),
			"enterprises":        summary.Enterprises,
			"measurements_known": summary.MeasurementsKnown,
			"oee_results":        summary.OEEResults,
			"tier_counts":        summary.TierCounts,
			"change_events":      summary.ChangeEvents,
		},
	})
}
