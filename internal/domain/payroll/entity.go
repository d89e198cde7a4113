package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum. Runs only move forward: draft -> pending -> approved.
type RunStatus string

const (
	RunStatusDraft    RunStatus = "draft"
	RunStatusPending  RunStatus = "pending"
	RunStatusApproved RunStatus = "approved"
)

// PayrollRun - one payroll period for a tenant
type PayrollRun struct {
	ID         string
	TenantID   string
	Period     string // YYYY-MM
	Status     RunStatus
	CreatedBy  string
	ApprovedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []PayrollItem
}

// PayrollItem - one employee line of a run, immutable once drafted
type PayrollItem struct {
	ID           string
	PayrollRunID string
	EmployeeID   string
	BaseSalary   decimal.Decimal
	NetSalary    decimal.Decimal

	// Joined fields
	EmployeeName *string
}

// SalaryConfig - reference data, read but never written by payroll
type SalaryConfig struct {
	EmployeeID string
	BaseSalary decimal.Decimal
	Allowances map[string]decimal.Decimal // {"Transport": 500000}
	Deductions map[string]decimal.Decimal // {"BPJS": 100000}
}

// Payslip - single employee payslip with the full net computation
type Payslip struct {
	ID          string
	TenantID    string
	EmployeeID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	BaseSalary  decimal.Decimal
	Allowances  map[string]decimal.Decimal
	Deductions  map[string]decimal.Decimal
	NetSalary   decimal.Decimal
	CreatedAt   time.Time

	// Joined fields
	EmployeeName       *string
	EmployeeNIK        *string
	EmployeePosition   *string
	EmployeeDepartment *string
	EmployeeUserID     *string
}

// Sum adds every amount of a component map.
func Sum(components map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range components {
		total = total.Add(v)
	}
	return total
}

// NetSalary is base + Σallowances − Σdeductions. No tax rules apply.
func NetSalary(base decimal.Decimal, allowances, deductions map[string]decimal.Decimal) decimal.Decimal {
	return base.Add(Sum(allowances)).Sub(Sum(deductions))
}
