package errorlog

import (
	"context"
	"time"
)

// DefaultListLimit caps the admin error listing.
const DefaultListLimit = 100

type Service interface {
	// Record persists r best-effort.
	Record(ctx context.Context, r Record)
	// ListRecent lists the caller's tenant records, newest first.
	ListRecent(ctx context.Context) ([]RecordResponse, error)
}

type RecordResponse struct {
	ID        string    `json:"id"`
	TenantID  *string   `json:"tenant_id"`
	Route     string    `json:"route"`
	Message   string    `json:"error_message"`
	Stack     string    `json:"stack_trace"`
	Payload   string    `json:"payload_json"`
	CreatedAt time.Time `json:"created_at"`
}
