package employee

import (
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

type EmployeeFilter struct {
	pagination.Params
}

type EmployeeResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	NIK        string `json:"nik"`
	Position   string `json:"position"`
	Department string `json:"department"`
	JoinDate   string `json:"join_date"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		Name:       e.Name,
		Email:      e.Email,
		Role:       string(e.Role),
		Status:     string(e.Status),
		NIK:        e.NIK,
		Position:   e.Position,
		Department: e.Department,
		JoinDate:   e.JoinDate.Format("2006-01-02"),
	}
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	NIK        string `json:"nik"`
	Position   string `json:"position"`
	Department string `json:"department"`
	JoinDate   string `json:"join_date"`

	parsedJoinDate time.Time
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("name", r.Name)
	errs.Required("email", r.Email)
	errs.Required("nik", r.NIK)
	errs.Required("position", r.Position)
	errs.Required("department", r.Department)
	errs.Required("join_date", r.JoinDate)

	if !validator.IsEmpty(r.Email) && !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}
	if r.Role == "" {
		r.Role = string(user.RoleEmployee)
	} else if !user.Role(r.Role).IsValid() {
		errs.Add("role", "role must be one of ADMIN, HR, MANAGER, EMPLOYEE")
	}
	if !validator.IsEmpty(r.JoinDate) {
		d, ok := validator.IsValidDate(r.JoinDate)
		if !ok {
			errs.Add("join_date", "join_date must be in YYYY-MM-DD format")
		}
		r.parsedJoinDate = d
	}

	return errs.Err()
}

func (r *CreateEmployeeRequest) ParsedJoinDate() time.Time {
	return r.parsedJoinDate
}

type CreateEmployeeResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	TempPassword string `json:"temp_password"`
}

// UpdateEmployeeRequest applies only the fields that are set.
type UpdateEmployeeRequest struct {
	ID         string  `json:"-"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Status     *string `json:"status"`
	NIK        *string `json:"nik"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
	JoinDate   *string `json:"join_date"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "invalid email format")
	}
	if r.Role != nil && !user.Role(*r.Role).IsValid() {
		errs.Add("role", "role must be one of ADMIN, HR, MANAGER, EMPLOYEE")
	}
	if r.Status != nil && !user.Status(*r.Status).IsValid() {
		errs.Add("status", "status must be active or inactive")
	}
	if r.JoinDate != nil {
		if _, ok := validator.IsValidDate(*r.JoinDate); !ok {
			errs.Add("join_date", "join_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}
