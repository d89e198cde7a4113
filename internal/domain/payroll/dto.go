package payroll

import (
	"time"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateDraftRequest struct {
	Period      string   `json:"period"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *CreateDraftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Period) {
		errs.Add("period", "period is required")
	} else if !timeutil.IsValidMonth(r.Period) {
		errs.Add("period", "period must be in YYYY-MM format")
	}
	if len(r.EmployeeIDs) == 0 {
		errs.Add("employee_ids", "employee_ids must contain at least one id")
	}
	for _, id := range r.EmployeeIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("employee_ids", "employee_ids must contain valid ids")
			break
		}
	}

	return errs.Err()
}

type PayrollItemResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	BaseSalary   decimal.Decimal `json:"base_salary"`
	NetSalary    decimal.Decimal `json:"net_salary"`
}

type PayrollRunResponse struct {
	ID         string                `json:"id"`
	Period     string                `json:"period"`
	Status     string                `json:"status"`
	CreatedBy  string                `json:"created_by"`
	ApprovedBy *string               `json:"approved_by"`
	CreatedAt  time.Time             `json:"created_at"`
	Items      []PayrollItemResponse `json:"items,omitempty"`
}

func NewPayrollRunResponse(run PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:         run.ID,
		Period:     run.Period,
		Status:     string(run.Status),
		CreatedBy:  run.CreatedBy,
		ApprovedBy: run.ApprovedBy,
		CreatedAt:  run.CreatedAt,
	}
	for _, item := range run.Items {
		resp.Items = append(resp.Items, PayrollItemResponse{
			ID:           item.ID,
			EmployeeID:   item.EmployeeID,
			EmployeeName: item.EmployeeName,
			BaseSalary:   item.BaseSalary,
			NetSalary:    item.NetSalary,
		})
	}
	return resp
}

type PayrollRunFilter struct {
	pagination.Params
}

type ListPayrollRunResponse struct {
	Data       []PayrollRunResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

// ========== PAYSLIP DTOs ==========

type CreatePayslipRequest struct {
	EmployeeID  string                     `json:"employee_id"`
	PeriodStart string                     `json:"period_start"`
	PeriodEnd   string                     `json:"period_end"`
	BaseSalary  *decimal.Decimal           `json:"base_salary"`
	Allowances  map[string]decimal.Decimal `json:"allowances"`
	Deductions  map[string]decimal.Decimal `json:"deductions"`

	start time.Time
	end   time.Time
}

func (r *CreatePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid id")
	}
	errs.Required("period_start", r.PeriodStart)
	errs.Required("period_end", r.PeriodEnd)

	var startOK, endOK bool
	if !validator.IsEmpty(r.PeriodStart) {
		if r.start, startOK = validator.IsValidDate(r.PeriodStart); !startOK {
			errs.Add("period_start", "period_start must be in YYYY-MM-DD format")
		}
	}
	if !validator.IsEmpty(r.PeriodEnd) {
		if r.end, endOK = validator.IsValidDate(r.PeriodEnd); !endOK {
			errs.Add("period_end", "period_end must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && r.end.Before(r.start) {
		errs.Add("period_end", "period_end must not be before period_start")
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must be non-negative")
	}

	return errs.Err()
}

func (r *CreatePayslipRequest) Period() (time.Time, time.Time) {
	return r.start, r.end
}

type PayslipResponse struct {
	ID          string                     `json:"id"`
	EmployeeID  string                     `json:"employee_id"`
	Name        *string                    `json:"name,omitempty"`
	NIK         *string                    `json:"nik,omitempty"`
	Position    *string                    `json:"position,omitempty"`
	Department  *string                    `json:"department,omitempty"`
	PeriodStart string                     `json:"period_start"`
	PeriodEnd   string                     `json:"period_end"`
	BaseSalary  decimal.Decimal            `json:"base_salary"`
	Allowances  map[string]decimal.Decimal `json:"allowances"`
	Deductions  map[string]decimal.Decimal `json:"deductions"`
	NetSalary   decimal.Decimal            `json:"net_salary"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:          p.ID,
		EmployeeID:  p.EmployeeID,
		Name:        p.EmployeeName,
		NIK:         p.EmployeeNIK,
		Position:    p.EmployeePosition,
		Department:  p.EmployeeDepartment,
		PeriodStart: p.PeriodStart.Format(timeutil.DateLayout),
		PeriodEnd:   p.PeriodEnd.Format(timeutil.DateLayout),
		BaseSalary:  p.BaseSalary,
		Allowances:  p.Allowances,
		Deductions:  p.Deductions,
		NetSalary:   p.NetSalary,
	}
}
