package memory

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	s *Store
}

func (r *payrollRepository) CreateRun(_ context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	run.ID = newID()
	run.CreatedAt = r.s.stamp()
	run.UpdatedAt = run.CreatedAt
	run.Items = nil
	r.s.runs[run.ID] = run
	return run, nil
}

func (r *payrollRepository) GetRun(_ context.Context, tenantID, id string) (payroll.PayrollRun, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	run, ok := r.s.runs[id]
	if !ok || run.TenantID != tenantID {
		return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
	}
	return run, nil
}

func (r *payrollRepository) ListRuns(_ context.Context, tenantID string, params pagination.Params) ([]payroll.PayrollRun, int64, error) {
	params = params.Normalize(payroll.SortColumns, payroll.DefaultSort)

	r.s.mu.RLock()
	var rows []payroll.PayrollRun
	for _, run := range r.s.runs {
		if run.TenantID == tenantID {
			rows = append(rows, run)
		}
	}
	r.s.mu.RUnlock()

	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "period":
		sortStable(rows, desc, func(a, b payroll.PayrollRun) bool { return a.Period < b.Period })
	case "status":
		sortStable(rows, desc, func(a, b payroll.PayrollRun) bool { return a.Status < b.Status })
	default:
		sortStable(rows, desc, func(a, b payroll.PayrollRun) bool { return a.CreatedAt.Before(b.CreatedAt) })
	}

	return page(rows, params.Offset(), params.Limit), int64(len(rows)), nil
}

func (r *payrollRepository) TransitionRun(_ context.Context, tenantID, id string, from, to payroll.RunStatus, approverID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	run, ok := r.s.runs[id]
	if !ok || run.TenantID != tenantID || run.Status != from {
		return payroll.ErrInvalidRunTransition
	}
	run.Status = to
	if approverID != nil {
		run.ApprovedBy = approverID
	}
	run.UpdatedAt = r.s.stamp()
	r.s.runs[id] = run
	return nil
}

func (r *payrollRepository) CreateItem(_ context.Context, item payroll.PayrollItem) (payroll.PayrollItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = newID()
	r.s.items[item.PayrollRunID] = append(r.s.items[item.PayrollRunID], item)
	return item, nil
}

func (r *payrollRepository) ListItems(_ context.Context, runID string) ([]payroll.PayrollItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]payroll.PayrollItem, 0, len(r.s.items[runID]))
	for _, item := range r.s.items[runID] {
		if e, ok := r.s.employees[item.EmployeeID]; ok {
			name := r.s.joinEmployeeLocked(e).Name
			item.EmployeeName = &name
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *payrollRepository) GetSalaryConfig(_ context.Context, employeeID string) (payroll.SalaryConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cfg, ok := r.s.salaries[employeeID]
	if !ok {
		return payroll.SalaryConfig{}, payroll.ErrSalaryConfigNotFound
	}
	return cfg, nil
}

func (r *payrollRepository) CreatePayslip(_ context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.ID = newID()
	p.CreatedAt = r.s.stamp()
	p.Allowances = copyComponents(p.Allowances)
	p.Deductions = copyComponents(p.Deductions)
	r.s.payslips[p.ID] = p
	return p, nil
}

func (r *payrollRepository) GetPayslip(_ context.Context, tenantID, id string) (payroll.Payslip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payslips[id]
	if !ok || p.TenantID != tenantID {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	if e, ok := r.s.employees[p.EmployeeID]; ok {
		e = r.s.joinEmployeeLocked(e)
		p.EmployeeName = &e.Name
		p.EmployeeNIK = &e.NIK
		p.EmployeePosition = &e.Position
		p.EmployeeDepartment = &e.Department
		p.EmployeeUserID = &e.UserID
	}
	return p, nil
}

func copyComponents(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
