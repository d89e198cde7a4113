package payroll

import "errors"

var (
	ErrPayrollRunNotFound   = errors.New("payroll run not found")
	ErrInvalidRunTransition = errors.New("payroll run is not in a state that allows this action")
	ErrSalaryConfigNotFound = errors.New("salary config not found")
	ErrSalaryNotFound       = errors.New("salary not found for employee")
	ErrNegativeNetSalary    = errors.New("net salary cannot be negative")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrInvalidPeriod        = errors.New("invalid payroll period")
)
