package approval

import "context"

// Repository only appends. Entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, entry *LogEntry) error
	ListByEntity(ctx context.Context, tenantID string, entityType EntityType, entityID string) ([]LogEntry, error)
}
