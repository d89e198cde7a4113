package attendance

import (
	"fmt"
	"time"
)

const (
	NoteLate            = "Late"
	NoteMissingClockOut = "Missing Clock Out"
	NoteCorrected       = "Corrected"
)

// OvertimeNote renders the overtime annotation appended at clock-out.
func OvertimeNote(hours int) string {
	return fmt.Sprintf("Overtime: %dh", hours)
}

// AppendNote comma-joins note onto an existing annotation.
func AppendNote(existing *string, note string) string {
	if existing == nil || *existing == "" {
		return note
	}
	return *existing + ", " + note
}

// Attendance is one clock-in session. An open session has no ClockOut.
type Attendance struct {
	ID         string
	TenantID   string
	EmployeeID string
	ClockIn    time.Time
	ClockOut   *time.Time
	IP         string
	Note       *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined
	EmployeeName string
	EmployeeNIK  string
}

func (a *Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

type CorrectionStatus string

const (
	CorrectionStatusPending  CorrectionStatus = "pending"
	CorrectionStatusApproved CorrectionStatus = "approved"
	CorrectionStatusRejected CorrectionStatus = "rejected"
)

// Correction is an employee-submitted edit to a past attendance session.
type Correction struct {
	ID          string
	TenantID    string
	EmployeeID  string
	Date        time.Time
	OldClockIn  *time.Time
	OldClockOut *time.Time
	NewClockIn  *time.Time
	NewClockOut *time.Time
	Reason      string
	RequestedBy string
	Status      CorrectionStatus
	ApprovedBy  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined
	RequesterName string
}

func (c *Correction) IsPending() bool {
	return c.Status == CorrectionStatusPending
}
