package port

import (
	"context"
	"time"
)

// EngineMetric represents one operational metric emitted by the engine
// (refresh duration, measurements discovered, tier distribution, change count).
type EngineMetric struct {
	Name       string            // metric name (e.g. "SchemaRefreshDuration")
	Value      float64           // metric value
	Unit       string            // unit hint ("ms", "count", "%")
	Dimensions map[string]string // extra dimensions (e.g. enterprise)
	Timestamp  time.Time         // when the observation was taken
}

// MetricsPublisher defines the interface for publishing engine metrics to
// external observability platforms without coupling to a specific backend.
type MetricsPublisher interface {
	// PublishBatch publishes multiple metrics in a single operation.
	// Implementations should handle backend batching constraints.
	PublishBatch(ctx context.Context, metrics []EngineMetric) error

	// PublishSingle publishes a single metric immediately, bypassing buffering.
	PublishSingle(ctx context.Context, metric EngineMetric) error

	// Flush forces immediate publication of any buffered metrics.
	// Should be called during graceful shutdown to prevent data loss.
	Flush(ctx context.Context) error
}
