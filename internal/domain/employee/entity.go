package employee

import (
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/user"
)

// Employee is the HR profile attached 1:1 to a User.
type Employee struct {
	ID         string
	TenantID   string
	UserID     string
	NIK        string
	Position   string
	Department string
	JoinDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined from users
	Name   string
	Email  string
	Role   user.Role
	Status user.Status
}
