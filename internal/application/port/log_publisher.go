package port

import (
	"context"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is one structured record destined for an external log system,
// typically the cycle summary emitted after each analysis run.
type LogEntry struct {
	Timestamp time.Time              // When the event occurred
	Level     LogLevel               // Severity level
	Message   string                 // Human-readable message
	Fields    map[string]interface{} // Structured cycle fields
}

// LogPublisher defines the interface for shipping engine log entries to an
// external observability platform without coupling to a specific backend.
type LogPublisher interface {
	// Publish buffers a single log entry for delivery.
	Publish(ctx context.Context, entry LogEntry) error

	// Flush forces immediate delivery of any buffered entries.
	// Should be called during graceful shutdown to prevent data loss.
	Flush(ctx context.Context) error
}
