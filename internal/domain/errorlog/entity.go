package errorlog

import "time"

// Record captures an unexpected failure reaching the catch-all boundary.
type Record struct {
	ID        string
	TenantID  *string
	Route     string
	Message   string
	Stack     string
	Payload   string // JSON, sensitive fields redacted
	CreatedAt time.Time
}
