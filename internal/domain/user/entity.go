package user

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"    // Tenant administrator
	RoleHR       Role = "HR"       // Manages employees, payroll drafts
	RoleManager  Role = "MANAGER"  // Reviews leave and corrections
	RoleEmployee Role = "EMPLOYEE" // Self-service only
)

// Roles lists every role in the closed enumeration.
var Roles = []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

type User struct {
	ID                 string
	TenantID           string
	Name               string
	Email              string
	PasswordHash       string
	Role               Role
	Status             Status
	ResetCodeHash      *string
	ResetCodeExpiresAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsReviewer reports whether the user sees tenant-wide data rather than only
// their own.
func (u *User) IsReviewer() bool {
	return u.Role != RoleEmployee
}
