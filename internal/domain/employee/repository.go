package employee

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
)

// EmployeeRepository reads employees joined with their user row. Every method
// is tenant scoped.
type EmployeeRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (Employee, error)
	GetByUserID(ctx context.Context, tenantID, userID string) (Employee, error)
	List(ctx context.Context, tenantID string, params pagination.Params) ([]Employee, int64, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, e Employee) error
}

var SortColumns = map[string]string{
	"created_at": "e.created_at",
	"name":       "u.name",
	"nik":        "e.nik",
	"join_date":  "e.join_date",
	"department": "e.department",
}

const DefaultSort = "created_at"
