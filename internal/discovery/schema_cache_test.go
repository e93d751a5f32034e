package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

type mockTelemetryRepository struct {
	mu sync.Mutex

	countRows    []repository.MeasurementCountRow
	topologyRows []repository.TopologyCountRow
	samples      map[string][]repository.SampleRow

	countCalls    int64
	topologyCalls int64
	sampleCalls   int64

	countErr  error
	sampleErr error
}

func (m *mockTelemetryRepository) CountByMeasurement(_ context.Context, _ valueobject.TimeRange) ([]repository.MeasurementCountRow, error) {
	atomic.AddInt64(&m.countCalls, 1)
	if m.countErr != nil {
		return nil, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.MeasurementCountRow(nil), m.countRows...), nil
}

func (m *mockTelemetryRepository) CountByTopology(_ context.Context, _ valueobject.TimeRange) ([]repository.TopologyCountRow, error) {
	atomic.AddInt64(&m.topologyCalls, 1)
	if m.countErr != nil {
		return nil, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.TopologyCountRow(nil), m.topologyRows...), nil
}

func (m *mockTelemetryRepository) SampleValues(_ context.Context, measurement string, _ valueobject.TimeRange, _ int) ([]repository.SampleRow, error) {
	atomic.AddInt64(&m.sampleCalls, 1)
	if m.sampleErr != nil {
		return nil, m.sampleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samples[measurement], nil
}

func sampleRows(values ...string) []repository.SampleRow {
	rows := make([]repository.SampleRow, len(values))
	now := time.Now()
	for i, v := range values {
		rows[i] = repository.SampleRow{RawValue: v, RecordedAt: now.Add(-time.Duration(i) * time.Minute)}
	}
	return rows
}

func newTestRepo() *mockTelemetryRepository {
	lastSeen := time.Now().Add(-10 * time.Minute)
	return &mockTelemetryRepository{
		countRows: []repository.MeasurementCountRow{
			{Measurement: "line_oee", Enterprise: "acme", Site: "site-a", Count: 120, LastSeen: lastSeen},
			{Measurement: "line_oee", Enterprise: "acme", Site: "site-b", Count: 80, LastSeen: lastSeen.Add(time.Minute)},
			{Measurement: "zone_temperature", Enterprise: "acme", Site: "site-a", Count: 500, LastSeen: lastSeen},
			{Measurement: "machine_state", Enterprise: "globex", Site: "north", Count: 42, LastSeen: lastSeen},
		},
		samples: map[string][]repository.SampleRow{
			"line_oee":         sampleRows("85.2", "84.9", "86.1"),
			"zone_temperature": sampleRows("21.5", "21.7"),
			"machine_state":    sampleRows("running", "fault"),
		},
	}
}

func TestSchemaCache_RefreshBuildsDescriptors(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}

	measurements := cache.Measurements()
	if len(measurements) != 3 {
		t.Fatalf("expected 3 measurements, got %d", len(measurements))
	}

	byName := make(map[string]int)
	for i, d := range measurements {
		byName[d.Name] = i
	}

	oee := measurements[byName["line_oee"]]
	if oee.Count != 200 {
		t.Errorf("expected counts folded across sites: got %d", oee.Count)
	}
	if len(oee.Sites) != 2 {
		t.Errorf("expected 2 sites for line_oee, got %v", oee.Sites)
	}
	if oee.Classification != valueobject.CategoryOEEMetric {
		t.Errorf("expected oee_metric classification, got %v", oee.Classification)
	}
	if oee.ValueType != valueobject.ValueTypeNumeric {
		t.Errorf("expected numeric value type, got %v", oee.ValueType)
	}

	state := measurements[byName["machine_state"]]
	if state.ValueType != valueobject.ValueTypeString {
		t.Errorf("expected string value type for machine_state, got %v", state.ValueType)
	}

	if !cache.IsKnown("line_oee") {
		t.Error("expected line_oee to be known")
	}
	if cache.IsKnown("never_seen") {
		t.Error("unexpected unknown measurement reported as known")
	}

	enterprises := cache.Enterprises()
	if len(enterprises) != 2 {
		t.Errorf("expected 2 enterprises, got %v", enterprises)
	}
}

func TestSchemaCache_TTLReuse(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{TTL: time.Hour}, logger.New("error"))

	for i := 0; i < 5; i++ {
		if err := cache.RefreshIfStale(context.Background()); err != nil {
			t.Fatalf("RefreshIfStale() error = %v", err)
		}
	}

	if calls := atomic.LoadInt64(&repo.countCalls); calls != 1 {
		t.Errorf("expected exactly 1 count query within TTL, got %d", calls)
	}
}

func TestSchemaCache_SingleFlight(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{TTL: time.Hour}, logger.New("error"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.RefreshIfStale(context.Background())
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt64(&repo.countCalls); calls != 1 {
		t.Errorf("expected concurrent refreshes to share one flight, got %d count queries", calls)
	}
}

func TestSchemaCache_FailureKeepsPreviousData(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{TTL: time.Nanosecond}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("initial refresh error = %v", err)
	}
	firstRefresh := cache.LastRefresh()

	// The next cycle fails; the previous dataset must stay visible.
	repo.countErr = errors.New("backend down")
	time.Sleep(time.Millisecond)

	if err := cache.RefreshIfStale(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if len(cache.Measurements()) != 3 {
		t.Errorf("expected stale data to remain readable, got %d measurements", len(cache.Measurements()))
	}
	if !cache.LastRefresh().Equal(firstRefresh) {
		t.Error("failed refresh must not advance the refresh timestamp")
	}
}

func TestSchemaCache_SampleFailureAbandonsCycle(t *testing.T) {
	repo := newTestRepo()
	repo.sampleErr = errors.New("sample query failed")
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err == nil {
		t.Fatal("expected error when sampling fails")
	}
	if len(cache.Measurements()) != 0 {
		t.Error("expected no partial data after a failed cycle")
	}
	if !cache.LastRefresh().IsZero() {
		t.Error("expected zero refresh timestamp after failure")
	}
}

func TestSchemaCache_MeasurementsByEnterprise(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}

	globex := cache.MeasurementsByEnterprise("globex")
	if len(globex) != 1 || globex[0].Name != "machine_state" {
		t.Errorf("unexpected globex measurements: %v", globex)
	}

	if got := cache.MeasurementsByEnterprise("unknown"); len(got) != 0 {
		t.Errorf("expected empty result for unknown enterprise, got %v", got)
	}
}

func TestSchemaCache_ReadersGetCopies(t *testing.T) {
	repo := newTestRepo()
	cache := NewSchemaCache(repo, service.NewClassifier(), SchemaCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}

	first := cache.Measurements()
	first[0].Name = "mutated"
	first[0].SampleValues = nil

	second := cache.Measurements()
	if second[0].Name == "mutated" {
		t.Error("mutating a returned descriptor must not affect the cache")
	}
}
