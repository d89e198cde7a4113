package errorlog

import "context"

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// ListRecent returns the newest records of one tenant.
	ListRecent(ctx context.Context, tenantID string, limit int) ([]Record, error)
}
