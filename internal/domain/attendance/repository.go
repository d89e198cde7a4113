package attendance

import (
	"context"
	"time"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
)

// ListFilter selects sessions whose clock_in falls in [From, To).
type ListFilter struct {
	From       time.Time
	To         time.Time
	EmployeeID *string
	pagination.Params
}

// SortColumns whitelists sort keys for attendance listings.
var SortColumns = map[string]string{
	"clock_in":  "a.clock_in",
	"clock_out": "a.clock_out",
	"name":      "u.name",
	"nik":       "e.nik",
}

const DefaultSort = "clock_in"

type AttendanceRepository interface {
	Create(ctx context.Context, a Attendance) (Attendance, error)
	// GetOpenSessionBetween returns the newest open session whose clock_in is in [from, to).
	GetOpenSessionBetween(ctx context.Context, employeeID string, from, to time.Time) (Attendance, error)
	// GetLatestOpenSession returns the open session with the greatest clock_in.
	GetLatestOpenSession(ctx context.Context, employeeID string) (Attendance, error)
	UpdateNote(ctx context.Context, id string, note string) error
	Close(ctx context.Context, id string, clockOut time.Time, note *string) error
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Attendance, int64, error)

	FindByClockIn(ctx context.Context, tenantID, employeeID string, clockIn time.Time) (Attendance, error)
	FindFirstBetween(ctx context.Context, tenantID, employeeID string, from, to time.Time) (Attendance, error)
	UpdateTimes(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time) error
}

type CorrectionRepository interface {
	Create(ctx context.Context, c Correction) (Correction, error)
	GetByID(ctx context.Context, tenantID, id string) (Correction, error)
	ListPending(ctx context.Context, tenantID string) ([]Correction, error)
	// UpdateStatusIfPending moves a pending correction to status. It returns
	// ErrCorrectionAlreadyProcessed when the row is no longer pending.
	UpdateStatusIfPending(ctx context.Context, tenantID, id string, status CorrectionStatus, approverID string) error
}
