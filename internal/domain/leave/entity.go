package leave

import (
	"time"
)

// AnnualAllowance is the fixed number of approved leave days per calendar year.
const AnnualAllowance = 12

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	TenantID   string
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Days       int
	Reason     string
	Status     Status
	ApproverID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined
	EmployeeName   string
	EmployeeNIK    string
	EmployeeUserID string
}

func (r *LeaveRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Overlaps uses the inclusive range test start <= other.end && end >= other.start.
func (r *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// Balance is the yearly allowance view for one employee.
type Balance struct {
	Allowance int
	Used      int
	Year      int
}

func (b Balance) Remaining() int {
	return b.Allowance - b.Used
}

// Allows reports whether days more can be approved without exceeding the allowance.
func (b Balance) Allows(days int) bool {
	return b.Used+days <= b.Allowance
}
