package webhook

import "context"

// Store is the persistence contract for the audit trail.
//
// It MUST be append-only: no Update/Delete methods are provided.
// Append runs as a single transaction and returns the generated log id.
// Read methods tolerate concurrent writers; callers on read paths
// prefer degraded results over failing a health check, so Store
// implementations return plain errors and leave that policy to the
// HTTP layer.
type Store interface {
	Append(ctx context.Context, e NewLogEntry) (int64, error)
	RecentLogs(ctx context.Context, limit int) ([]LogEntry, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
