package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeCorrectionApproved NotificationType = "correction_approved"
	TypeCorrectionRejected NotificationType = "correction_rejected"
	TypeLeaveApproved      NotificationType = "leave_approved"
	TypeLeaveRejected      NotificationType = "leave_rejected"
	TypePayrollApproved    NotificationType = "payroll_approved"
)

// Notification represents a notification entity
type Notification struct {
	ID        string
	TenantID  string
	UserID    string
	Type      NotificationType
	Message   string
	Data      map[string]interface{}
	Read      bool
	CreatedAt time.Time
}
