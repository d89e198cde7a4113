package tenant

import "time"

// Tenant is an isolated organisation. Every other row belongs to one.
type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
