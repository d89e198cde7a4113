package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// NUMERIC columns travel as text so decimal.Decimal keeps full precision.

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const runColumns = `id, tenant_id, period, status, created_by, approved_by, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(&run.ID, &run.TenantID, &run.Period, &run.Status, &run.CreatedBy, &run.ApprovedBy, &run.CreatedAt, &run.UpdatedAt)
	return run, err
}

// CreateRun implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanRun(q.QueryRow(ctx, `
		INSERT INTO payroll_runs (tenant_id, period, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+runColumns,
		run.TenantID, run.Period, run.Status, run.CreatedBy,
	))
	if err != nil {
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

// GetRun implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetRun(ctx context.Context, tenantID, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	run, err := scanRun(q.QueryRow(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

// ListRuns implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListRuns(ctx context.Context, tenantID string, params pagination.Params) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)
	params = params.Normalize(payroll.SortColumns, payroll.DefaultSort)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_runs WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM payroll_runs
		WHERE tenant_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, runColumns, params.OrderBy(payroll.SortColumns))

	rows, err := q.Query(ctx, query, tenantID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	runs := []payroll.PayrollRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// TransitionRun implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) TransitionRun(ctx context.Context, tenantID, id string, from, to payroll.RunStatus, approverID *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE payroll_runs
		SET status = $1, approved_by = COALESCE($2, approved_by), updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4 AND status = $5
	`, to, approverID, tenantID, id, from)
	if err != nil {
		return fmt.Errorf("failed to transition payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrInvalidRunTransition
	}
	return nil
}

// CreateItem implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) CreateItem(ctx context.Context, item payroll.PayrollItem) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO payroll_items (payroll_run_id, employee_id, base_salary, net_salary)
		VALUES ($1, $2, $3::numeric, $4::numeric)
		RETURNING id
	`, item.PayrollRunID, item.EmployeeID, item.BaseSalary.String(), item.NetSalary.String()).Scan(&item.ID)
	if err != nil {
		return payroll.PayrollItem{}, fmt.Errorf("failed to create payroll item: %w", err)
	}
	return item, nil
}

// ListItems implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) ListItems(ctx context.Context, runID string) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT pi.id, pi.payroll_run_id, pi.employee_id, pi.base_salary::text, pi.net_salary::text, u.name
		FROM payroll_items pi
		LEFT JOIN employees e ON e.id = pi.employee_id
		LEFT JOIN users u ON u.id = e.user_id
		WHERE pi.payroll_run_id = $1
		ORDER BY u.name ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	items := []payroll.PayrollItem{}
	for rows.Next() {
		var item payroll.PayrollItem
		var base, net string
		if err := rows.Scan(&item.ID, &item.PayrollRunID, &item.EmployeeID, &base, &net, &item.EmployeeName); err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		if item.BaseSalary, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("parse base salary: %w", err)
		}
		if item.NetSalary, err = decimal.NewFromString(net); err != nil {
			return nil, fmt.Errorf("parse net salary: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetSalaryConfig implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetSalaryConfig(ctx context.Context, employeeID string) (payroll.SalaryConfig, error) {
	q := GetQuerier(ctx, r.db)

	var base string
	var allowancesJSON, deductionsJSON []byte
	err := q.QueryRow(ctx, `
		SELECT base_salary::text, allowances_json, deductions_json
		FROM salaries WHERE employee_id = $1
	`, employeeID).Scan(&base, &allowancesJSON, &deductionsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryConfig{}, payroll.ErrSalaryConfigNotFound
		}
		return payroll.SalaryConfig{}, fmt.Errorf("failed to get salary config: %w", err)
	}

	cfg := payroll.SalaryConfig{EmployeeID: employeeID}
	if cfg.BaseSalary, err = decimal.NewFromString(base); err != nil {
		return payroll.SalaryConfig{}, fmt.Errorf("parse base salary: %w", err)
	}
	if cfg.Allowances, err = decodeComponents(allowancesJSON); err != nil {
		return payroll.SalaryConfig{}, fmt.Errorf("parse allowances: %w", err)
	}
	if cfg.Deductions, err = decodeComponents(deductionsJSON); err != nil {
		return payroll.SalaryConfig{}, fmt.Errorf("parse deductions: %w", err)
	}
	return cfg, nil
}

// CreatePayslip implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) CreatePayslip(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	allowances, err := json.Marshal(componentsOrEmpty(p.Allowances))
	if err != nil {
		return payroll.Payslip{}, err
	}
	deductions, err := json.Marshal(componentsOrEmpty(p.Deductions))
	if err != nil {
		return payroll.Payslip{}, err
	}

	err = q.QueryRow(ctx, `
		INSERT INTO payslips (
			tenant_id, employee_id, period_start, period_end,
			base_salary, allowances_json, deductions_json, net_salary
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8::numeric)
		RETURNING id, created_at
	`, p.TenantID, p.EmployeeID, p.PeriodStart, p.PeriodEnd,
		p.BaseSalary.String(), allowances, deductions, p.NetSalary.String(),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}
	return p, nil
}

// GetPayslip implements payroll.PayrollRepository.
func (r *payrollRepositoryImpl) GetPayslip(ctx context.Context, tenantID, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	var p payroll.Payslip
	var base, net string
	var allowancesJSON, deductionsJSON []byte
	err := q.QueryRow(ctx, `
		SELECT p.id, p.tenant_id, p.employee_id, p.period_start, p.period_end,
			p.base_salary::text, p.allowances_json, p.deductions_json, p.net_salary::text, p.created_at,
			u.name, e.nik, e.position, e.department, e.user_id
		FROM payslips p
		LEFT JOIN employees e ON e.id = p.employee_id
		LEFT JOIN users u ON u.id = e.user_id
		WHERE p.tenant_id = $1 AND p.id = $2
	`, tenantID, id).Scan(
		&p.ID, &p.TenantID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd,
		&base, &allowancesJSON, &deductionsJSON, &net, &p.CreatedAt,
		&p.EmployeeName, &p.EmployeeNIK, &p.EmployeePosition, &p.EmployeeDepartment, &p.EmployeeUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	if p.BaseSalary, err = decimal.NewFromString(base); err != nil {
		return payroll.Payslip{}, err
	}
	if p.NetSalary, err = decimal.NewFromString(net); err != nil {
		return payroll.Payslip{}, err
	}
	if p.Allowances, err = decodeComponents(allowancesJSON); err != nil {
		return payroll.Payslip{}, err
	}
	if p.Deductions, err = decodeComponents(deductionsJSON); err != nil {
		return payroll.Payslip{}, err
	}
	return p, nil
}

func decodeComponents(raw []byte) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func componentsOrEmpty(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}
