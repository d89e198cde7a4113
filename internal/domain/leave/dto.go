package leave

import (
	"time"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      *int   `json:"days"`
	Reason    string `json:"reason"`

	start time.Time
	end   time.Time
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("type", r.Type)
	errs.Required("start_date", r.StartDate)
	errs.Required("end_date", r.EndDate)
	errs.Required("reason", r.Reason)

	if r.Days == nil {
		errs.Add("days", "days is required")
	} else if *r.Days <= 0 {
		errs.Add("days", "days must be greater than 0")
	}

	var startOK, endOK bool
	if !validator.IsEmpty(r.StartDate) {
		r.start, startOK = validator.IsValidDate(r.StartDate)
		if !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if !validator.IsEmpty(r.EndDate) {
		r.end, endOK = validator.IsValidDate(r.EndDate)
		if !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && r.end.Before(r.start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

// Range returns the parsed dates. Valid only after Validate succeeded.
func (r *CreateLeaveRequest) Range() (time.Time, time.Time) {
	return r.start, r.end
}

type CreateLeaveResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type UpdateStatusRequest struct {
	ID      string  `json:"-"`
	Status  Status  `json:"-"`
	Comment *string `json:"comment"`
}

func (r *UpdateStatusRequest) Validate() error {
	if r.Status != StatusApproved && r.Status != StatusRejected {
		return ErrInvalidStatus
	}
	return nil
}

type LeaveFilter struct {
	pagination.Params
}

type LeaveRequestResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name,omitempty"`
	NIK        string  `json:"nik,omitempty"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Days       int     `json:"days"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	ApproverID *string `json:"approver_id"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Name:       r.EmployeeName,
		NIK:        r.EmployeeNIK,
		Type:       r.Type,
		StartDate:  r.StartDate.Format("2006-01-02"),
		EndDate:    r.EndDate.Format("2006-01-02"),
		Days:       r.Days,
		Reason:     r.Reason,
		Status:     string(r.Status),
		ApproverID: r.ApproverID,
	}
}

type ListLeaveResponse struct {
	Data       []LeaveRequestResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"totalPages"`
}

type BalanceResponse struct {
	Allowance int `json:"allowance"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Year      int `json:"year"`
}
