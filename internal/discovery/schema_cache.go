package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/service"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultCountWindow  = 24 * time.Hour
	defaultSampleWindow = time.Hour
	defaultSampleLimit  = 3
	defaultChunkSize    = 10

	schemaFlightKey = "schema"
)

// SchemaCacheConfig holds tunables for the schema discovery cache.
type SchemaCacheConfig struct {
	TTL          time.Duration // staleness threshold between refresh cycles
	CountWindow  time.Duration // lookback window for the aggregate count query
	SampleWindow time.Duration // lookback window for per-measurement sample queries
	SampleLimit  int           // rows per sample query
	ChunkSize    int           // measurements sampled concurrently per batch
}

func (c *SchemaCacheConfig) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = defaultCacheTTL
	}
	if c.CountWindow <= 0 {
		c.CountWindow = defaultCountWindow
	}
	if c.SampleWindow <= 0 {
		c.SampleWindow = defaultSampleWindow
	}
	if c.SampleLimit <= 0 {
		c.SampleLimit = defaultSampleLimit
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
}

// SchemaCache discovers the shape of incoming telemetry with no fixed schema.
// It owns one process-wide measurement map rebuilt from the telemetry store.
// Refreshes are single-flight: concurrent callers share the outcome of the
// in-flight cycle instead of issuing duplicate backend queries, and readers
// never observe a half-built map because the map is swapped in wholesale
// only after the full dataset is assembled.
type SchemaCache struct {
	repo       repository.TelemetryRepository
	classifier *service.Classifier
	cfg        SchemaCacheConfig
	log        *logger.Logger

	flight singleflight.Group

	mu           sync.RWMutex
	measurements map[string]*entity.MeasurementDescriptor
	knownNames   map[string]struct{}
	lastRefresh  time.Time
}

// NewSchemaCache creates a schema cache. The cache starts cold: the first
// access pays the full refresh cost.
func NewSchemaCache(
	repo repository.TelemetryRepository,
	classifier *service.Classifier,
	cfg SchemaCacheConfig,
	log *logger.Logger,
) *SchemaCache {
	cfg.applyDefaults()
	return &SchemaCache{
		repo:         repo,
		classifier:   classifier,
		cfg:          cfg,
		log:          log,
		measurements: make(map[string]*entity.MeasurementDescriptor),
		knownNames:   make(map[string]struct{}),
	}
}

// RefreshIfStale refreshes the cache when the TTL has elapsed. A call arriving
// while a refresh is already in flight does not start a second query sequence;
// it waits for the in-flight cycle and shares its outcome. On failure the
// previous cache contents stay visible.
func (c *SchemaCache) RefreshIfStale(ctx context.Context) error {
	if c.fresh() {
		return nil
	}

	_, err, _ := c.flight.Do(schemaFlightKey, func() (interface{}, error) {
		// A flight that completed while we were queuing may have already
		// stamped lastRefresh; do not query again within the TTL window.
		if c.fresh() {
			return nil, nil
		}
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *SchemaCache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.lastRefresh.IsZero() && time.Since(c.lastRefresh) < c.cfg.TTL
}

// refresh performs the two-phase discovery. Phase 1 folds grouped counts into
// per-measurement accumulators; phase 2 samples representative values with
// bounded concurrency. Any failure abandons the cycle wholesale.
func (c *SchemaCache) refresh(ctx context.Context) error {
	started := time.Now()

	countWindow, err := valueobject.TrailingWindow(c.cfg.CountWindow)
	if err != nil {
		return fmt.Errorf("build count window: %w", err)
	}

	rows, err := c.repo.CountByMeasurement(ctx, countWindow)
	if err != nil {
		return fmt.Errorf("schema discovery count query: %w", err)
	}

	next := make(map[string]*entity.MeasurementDescriptor)
	for _, row := range rows {
		descriptor, ok := next[row.Measurement]
		if !ok {
			descriptor = &entity.MeasurementDescriptor{
				Name:      row.Measurement,
				ValueType: valueobject.ValueTypeNumeric,
			}
			next[row.Measurement] = descriptor
		}
		descriptor.Count += row.Count
		descriptor.ObserveEnterprise(row.Enterprise)
		descriptor.ObserveSite(row.Site)
		descriptor.ObserveTimestamp(row.LastSeen)
	}

	if err := c.sampleAll(ctx, next); err != nil {
		return err
	}

	for name, descriptor := range next {
		descriptor.Classification = c.classifier.Classify(name, descriptor.ValueType, descriptor.NumericSamples())
	}

	names := make(map[string]struct{}, len(next))
	for name := range next {
		names[name] = struct{}{}
	}

	c.mu.Lock()
	c.measurements = next
	c.knownNames = names
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	c.log.Info("Schema cache refreshed",
		"measurements", len(next),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return nil
}

// sampleAll issues the narrow sample query for every discovered measurement.
// Measurements are processed in chunks: queries within a chunk run
// concurrently, chunks run sequentially to bound backend load.
func (c *SchemaCache) sampleAll(ctx context.Context, descriptors map[string]*entity.MeasurementDescriptor) error {
	sampleWindow, err := valueobject.TrailingWindow(c.cfg.SampleWindow)
	if err != nil {
		return fmt.Errorf("build sample window: %w", err)
	}

	names := make([]string, 0, len(descriptors))
	for name := range descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	for start := 0; start < len(names); start += c.cfg.ChunkSize {
		end := start + c.cfg.ChunkSize
		if end > len(names) {
			end = len(names)
		}

		g, groupCtx := errgroup.WithContext(ctx)
		for _, name := range names[start:end] {
			descriptor := descriptors[name]
			g.Go(func() error {
				samples, err := c.repo.SampleValues(groupCtx, descriptor.Name, sampleWindow, c.cfg.SampleLimit)
				if err != nil {
					return fmt.Errorf("sample query for %s: %w", descriptor.Name, err)
				}

				raw := make([]string, 0, len(samples))
				for _, s := range samples {
					raw = append(raw, s.RawValue)
				}
				descriptor.SetSamples(raw)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	return nil
}

// Measurements returns a copy of all discovered descriptors sorted by name.
func (c *SchemaCache) Measurements() []*entity.MeasurementDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*entity.MeasurementDescriptor, 0, len(c.measurements))
	for _, descriptor := range c.measurements {
		result = append(result, descriptor.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// MeasurementsByEnterprise returns copies of descriptors observed at the
// given enterprise, sorted by name.
func (c *SchemaCache) MeasurementsByEnterprise(enterprise string) []*entity.MeasurementDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*entity.MeasurementDescriptor
	for _, descriptor := range c.measurements {
		for _, e := range descriptor.Enterprises {
			if e == enterprise {
				result = append(result, descriptor.Clone())
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Enterprises returns the sorted set of enterprises seen across all descriptors.
func (c *SchemaCache) Enterprises() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set := make(map[string]struct{})
	for _, descriptor := range c.measurements {
		for _, e := range descriptor.Enterprises {
			set[e] = struct{}{}
		}
	}

	result := make([]string, 0, len(set))
	for e := range set {
		result = append(result, e)
	}
	sort.Strings(result)
	return result
}

// IsKnown reports whether a measurement name was seen on the last refresh.
func (c *SchemaCache) IsKnown(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.knownNames[name]
	return ok
}

// LastRefresh returns the timestamp of the last successful refresh.
func (c *SchemaCache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}
