package port

import "context"

// Cache is the narrow persistence surface the engine needs for the
// previous-cycle trend snapshot. Adapters may offer more (deletes,
// pattern scans), but the application layer only reads and writes.
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value in cache
	Set(ctx context.Context, key string, value interface{}) error
}
