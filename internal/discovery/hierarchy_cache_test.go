package discovery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/briananderson1222/EdgeMind-sub003/internal/domain/repository"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

func newTopologyRepo() *mockTelemetryRepository {
	return &mockTelemetryRepository{
		topologyRows: []repository.TopologyCountRow{
			{Enterprise: "acme", Site: "site-a", Area: "area-1", Machine: "press-01", Measurement: "line_oee", Count: 100},
			{Enterprise: "acme", Site: "site-a", Area: "area-1", Machine: "press-01", Measurement: "zone_temperature", Count: 400},
			{Enterprise: "acme", Site: "site-a", Area: "area-2", Machine: "mill-01", Measurement: "line_oee", Count: 50},
			{Enterprise: "acme", Site: "site-b", Area: "area-1", Machine: "press-02", Measurement: "line_oee", Count: 30},
			{Enterprise: "globex", Site: "north", Area: "paint", Machine: "robot-7", Measurement: "machine_state", Count: 42},
		},
	}
}

func TestHierarchyCache_RefreshBuildsTree(t *testing.T) {
	repo := newTopologyRepo()
	cache := NewHierarchyCache(repo, HierarchyCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}

	tree := cache.Tree()
	if len(tree.Enterprises) != 2 {
		t.Fatalf("expected 2 enterprises, got %d", len(tree.Enterprises))
	}

	acme := tree.Enterprises["acme"]
	if acme.TotalCount != 580 {
		t.Errorf("expected acme total 580, got %d", acme.TotalCount)
	}

	siteA := acme.Sites["site-a"]
	if siteA == nil || siteA.TotalCount != 550 {
		t.Fatalf("unexpected site-a node: %+v", siteA)
	}

	press := siteA.Areas["area-1"].Machines["press-01"]
	if press.TotalCount != 500 {
		t.Errorf("expected press-01 total 500, got %d", press.TotalCount)
	}
	if len(press.Measurements) != 2 {
		t.Errorf("expected 2 measurements on press-01, got %v", press.Measurements)
	}
}

func TestHierarchyCache_TTLAndSingleFlight(t *testing.T) {
	repo := newTopologyRepo()
	cache := NewHierarchyCache(repo, HierarchyCacheConfig{TTL: time.Hour}, logger.New("error"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.RefreshIfStale(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		if err := cache.RefreshIfStale(context.Background()); err != nil {
			t.Fatalf("RefreshIfStale() error = %v", err)
		}
	}

	if calls := atomic.LoadInt64(&repo.topologyCalls); calls != 1 {
		t.Errorf("expected exactly 1 topology query, got %d", calls)
	}
}

func TestHierarchyCache_FailureKeepsPreviousTree(t *testing.T) {
	repo := newTopologyRepo()
	cache := NewHierarchyCache(repo, HierarchyCacheConfig{TTL: time.Nanosecond}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("initial refresh error = %v", err)
	}

	repo.countErr = errors.New("backend down")
	time.Sleep(time.Millisecond)

	if err := cache.RefreshIfStale(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	tree := cache.Tree()
	if len(tree.Enterprises) != 2 {
		t.Errorf("expected stale tree to remain readable, got %d enterprises", len(tree.Enterprises))
	}
}

func TestHierarchyCache_TreeReturnsCopy(t *testing.T) {
	repo := newTopologyRepo()
	cache := NewHierarchyCache(repo, HierarchyCacheConfig{}, logger.New("error"))

	if err := cache.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale() error = %v", err)
	}

	tree := cache.Tree()
	tree.AddObservation("intruder", "s", "a", "m", "oee", 1)

	if _, ok := cache.Tree().Enterprises["intruder"]; ok {
		t.Error("mutating a returned tree must not affect the cache")
	}
}
