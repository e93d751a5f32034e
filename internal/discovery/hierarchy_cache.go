package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/entity"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/valueobject"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

const (
	defaultTopologyWindow = time.Hour

	hierarchyFlightKey = "hierarchy"
)

// HierarchyCacheConfig holds tunables for the topology cache.
type HierarchyCacheConfig struct {
	TTL            time.Duration // staleness threshold between refresh cycles
	TopologyWindow time.Duration // lookback window for the grouped topology query
}

func (c *HierarchyCacheConfig) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = defaultCacheTTL
	}
	if c.TopologyWindow <= 0 {
		c.TopologyWindow = defaultTopologyWindow
	}
}

// HierarchyCache owns the in-memory Enterprise -> Site -> Area -> Machine
// topology tree, rebuilt from the telemetry store. It follows the same
// single-flight and TTL discipline as SchemaCache with an independent
// refresh timestamp.
type HierarchyCache struct {
	repo repository.TelemetryRepository
	cfg  HierarchyCacheConfig
	log  *logger.Logger

	flight singleflight.Group

	mu          sync.RWMutex
	tree        *entity.Hierarchy
	lastRefresh time.Time
}

// NewHierarchyCache creates a topology cache. It starts cold.
func NewHierarchyCache(
	repo repository.TelemetryRepository,
	cfg HierarchyCacheConfig,
	log *logger.Logger,
) *HierarchyCache {
	cfg.applyDefaults()
	return &HierarchyCache{
		repo: repo,
		cfg:  cfg,
		log:  log,
		tree: entity.NewHierarchy(),
	}
}

// RefreshIfStale refreshes the topology tree when the TTL has elapsed,
// sharing an in-flight cycle between concurrent callers. On failure the
// previous tree stays visible.
func (c *HierarchyCache) RefreshIfStale(ctx context.Context) error {
	if c.fresh() {
		return nil
	}

	_, err, _ := c.flight.Do(hierarchyFlightKey, func() (interface{}, error) {
		if c.fresh() {
			return nil, nil
		}
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *HierarchyCache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.lastRefresh.IsZero() && time.Since(c.lastRefresh) < c.cfg.TTL
}

// refresh rebuilds the 4-level tree in one pass over the grouped query.
// Each row is added exactly once to each of its four ancestor totals, which
// is what guarantees the parent-equals-sum-of-children invariant.
func (c *HierarchyCache) refresh(ctx context.Context) error {
	started := time.Now()

	window, err := valueobject.TrailingWindow(c.cfg.TopologyWindow)
	if err != nil {
		return fmt.Errorf("build topology window: %w", err)
	}

	rows, err := c.repo.CountByTopology(ctx, window)
	if err != nil {
		return fmt.Errorf("topology count query: %w", err)
	}

	tree := entity.NewHierarchy()
	for _, row := range rows {
		tree.AddObservation(row.Enterprise, row.Site, row.Area, row.Machine, row.Measurement, row.Count)
	}

	c.mu.Lock()
	c.tree = tree
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	c.log.Info("Hierarchy cache refreshed",
		"enterprises", len(tree.Enterprises),
		"rows", len(rows),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return nil
}

// Tree returns a deep copy of the current topology tree.
func (c *HierarchyCache) Tree() *entity.Hierarchy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Clone()
}

// LastRefresh returns the timestamp of the last successful refresh.
func (c *HierarchyCache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}
