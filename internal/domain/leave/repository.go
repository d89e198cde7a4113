package leave

import (
	"context"
	"time"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
)

type ListFilter struct {
	EmployeeID *string
	pagination.Params
}

var SortColumns = map[string]string{
	"created_at": "l.created_at",
	"start_date": "l.start_date",
	"end_date":   "l.end_date",
	"status":     "l.status",
	"name":       "u.name",
}

const DefaultSort = "created_at"

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, tenantID, id string) (LeaveRequest, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]LeaveRequest, int64, error)

	// HasApprovedOverlap reports an approved leave of employeeID intersecting [start, end].
	HasApprovedOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	// SumApprovedDays totals approved days whose start_date falls in year.
	SumApprovedDays(ctx context.Context, employeeID string, year int) (int, error)
	// LockEmployee serialises approvals for one employee inside a transaction.
	LockEmployee(ctx context.Context, employeeID string) error
	// UpdateStatusIfPending returns ErrLeaveRequestAlreadyProcessed when the
	// row is no longer pending.
	UpdateStatusIfPending(ctx context.Context, tenantID, id string, status Status, approverID string) error
}
