package approval

import "time"

type EntityType string

const (
	EntityAttendanceCorrection EntityType = "attendance_correction"
	EntityLeaveRequest         EntityType = "leave_request"
	EntityPayrollRun           EntityType = "payroll_run"
)

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionSubmit  Action = "SUBMIT"
)

// LogEntry is one row of the append-only approval trail.
type LogEntry struct {
	ID          string
	TenantID    string
	EntityType  EntityType
	EntityID    string
	Action      Action
	PerformedBy string
	Comment     *string
	CreatedAt   time.Time
}
