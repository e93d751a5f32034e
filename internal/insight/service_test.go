package insight

import (
	"context"
	"sync"
	"testing"
	"time"

	applicationPort "github.com/briananderson1222/EdgeMind-sub003/internal/application/port"
	"github.com/briananderson1222/EdgeMind-sub003/internal/application/usecase"
	"github.com/briananderson1222/EdgeMind-sub003/internal/discovery"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

type fixedRepo struct {
	countRows    []repository.MeasurementCountRow
	topologyRows []repository.TopologyCountRow
	samples      map[string][]repository.SampleRow
}

func (r *fixedRepo) CountByMeasurement(_ context.Context, _ valueobject.TimeRange) ([]repository.MeasurementCountRow, error) {
	return r.countRows, nil
}

func (r *fixedRepo) CountByTopology(_ context.Context, _ valueobject.TimeRange) ([]repository.TopologyCountRow, error) {
	return r.topologyRows, nil
}

func (r *fixedRepo) SampleValues(_ context.Context, measurement string, _ valueobject.TimeRange, _ int) ([]repository.SampleRow, error) {
	return r.samples[measurement], nil
}

type recordingMetrics struct {
	mu      sync.Mutex
	batches [][]applicationPort.EngineMetric
}

func (m *recordingMetrics) PublishBatch(_ context.Context, metrics []applicationPort.EngineMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, metrics)
	return nil
}

func (m *recordingMetrics) PublishSingle(_ context.Context, metric applicationPort.EngineMetric) error {
	return m.PublishBatch(context.Background(), []applicationPort.EngineMetric{metric})
}

func (m *recordingMetrics) Flush(_ context.Context) error { return nil }

type recordingLogs struct {
	mu      sync.Mutex
	entries []applicationPort.LogEntry
}

func (l *recordingLogs) Publish(_ context.Context, entry applicationPort.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *recordingLogs) Flush(_ context.Context) error { return nil }

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newCycleService(metrics applicationPort.MetricsPublisher, logs applicationPort.LogPublisher, publisher applicationPort.EventPublisher) *Service {
	lastSeen := time.Now().Add(-time.Minute)
	repo := &fixedRepo{
		countRows: []repository.MeasurementCountRow{
			{Measurement: "line_oee", Enterprise: "acme", Site: "site-a", Count: 100, LastSeen: lastSeen},
			{Measurement: "zone_temperature", Enterprise: "acme", Site: "site-a", Count: 400, LastSeen: lastSeen},
		},
		topologyRows: []repository.TopologyCountRow{
			{Enterprise: "acme", Site: "site-a", Area: "press", Machine: "press-01", Measurement: "line_oee", Count: 100},
		},
		samples: map[string][]repository.SampleRow{
			"line_oee":         {{RawValue: "85.2", RecordedAt: lastSeen}},
			"zone_temperature": {{RawValue: "21.4", RecordedAt: lastSeen}},
		},
	}

	log := logger.New("error")
	schema := discovery.NewSchemaCache(repo, service.NewClassifier(), discovery.SchemaCacheConfig{TTL: time.Hour}, log)
	hierarchy := discovery.NewHierarchyCache(repo, discovery.HierarchyCacheConfig{TTL: time.Hour}, log)

	analyze := usecase.NewAnalyzeOEEUseCase(schema, service.NewOEEAnalyzer(), log)
	detect := usecase.NewDetectChangesUseCase(schema, service.NewChangeDetector(), nil, nil, log)

	return NewService(schema, hierarchy, analyze, detect, metrics, logs, publisher, 5.0)
}

func TestServiceEvaluateCycle(t *testing.T) {
	metrics := &recordingMetrics{}
	logs := &recordingLogs{}
	publisher := &recordingPublisher{}
	svc := newCycleService(metrics, logs, publisher)

	summary, err := svc.EvaluateCycle(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCycle() error = %v", err)
	}

	if summary.Enterprises != 1 {
		t.Errorf("Enterprises = %d, want 1", summary.Enterprises)
	}
	if summary.MeasurementsKnown != 2 {
		t.Errorf("MeasurementsKnown = %d, want 2", summary.MeasurementsKnown)
	}
	if summary.OEEResults != 1 {
		t.Errorf("OEEResults = %d, want 1", summary.OEEResults)
	}
	if summary.TierCounts[int(valueobject.TierPrecomputed)] != 1 {
		t.Errorf("TierCounts = %v, want one tier-1 result", summary.TierCounts)
	}
	if summary.ChangeEvents != 0 {
		t.Errorf("ChangeEvents = %d, want 0 on first cycle", summary.ChangeEvents)
	}

	if len(metrics.batches) != 1 {
		t.Fatalf("expected 1 metrics batch, got %d", len(metrics.batches))
	}
	if len(publisher.subjects) != 1 || publisher.subjects[0] != SubjectTrendOEE {
		t.Errorf("expected OEE report on %q, got %v", SubjectTrendOEE, publisher.subjects)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("expected 1 cycle log entry, got %d", len(logs.entries))
	}
	entry := logs.entries[0]
	if entry.Level != applicationPort.LogLevelInfo {
		t.Errorf("log level = %q, want INFO", entry.Level)
	}
	if entry.Fields["oee_results"] != 1 {
		t.Errorf("oee_results field = %v, want 1", entry.Fields["oee_results"])
	}
	if entry.Fields["change_events"] != 0 {
		t.Errorf("change_events field = %v, want 0", entry.Fields["change_events"])
	}
}

func TestServiceEvaluateCycleNilCollaborators(t *testing.T) {
	svc := newCycleService(nil, nil, nil)

	if _, err := svc.EvaluateCycle(context.Background()); err != nil {
		t.Fatalf("EvaluateCycle() with nil collaborators returned %v", err)
	}
}

func TestRunnerSnapshot(t *testing.T) {
	svc := newCycleService(nil, nil, nil)
	runner := NewRunner(svc, logger.New("error"), 5*time.Minute)

	before := runner.Snapshot()
	if !before.LastRunAt.IsZero() {
		t.Error("expected no last run before the first cycle")
	}

	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	after := runner.Snapshot()
	if after.LastRunAt.IsZero() {
		t.Fatal("expected last run to be recorded")
	}
	if after.LastError != "" {
		t.Errorf("unexpected last error %q", after.LastError)
	}
	if after.LastSummary == nil || after.LastSummary.OEEResults != 1 {
		t.Errorf("unexpected summary: %+v", after.LastSummary)
	}
}
