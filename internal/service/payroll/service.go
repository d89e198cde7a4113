package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/payroll"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	approvals    approval.Service
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	approvals approval.Service,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		approvals:    approvals,
	}
}

// CreateDraft implements payroll.PayrollService. Employees outside the tenant
// or without a salary config are left out of the run.
func (s *PayrollServiceImpl) CreateDraft(ctx context.Context, req payroll.CreateDraftRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	var run payroll.PayrollRun
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		run, err = s.payrollRepo.CreateRun(ctx, payroll.PayrollRun{
			TenantID:  id.TenantID,
			Period:    req.Period,
			Status:    payroll.RunStatusDraft,
			CreatedBy: id.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create payroll run: %w", err)
		}

		seen := make(map[string]bool, len(req.EmployeeIDs))
		for _, employeeID := range req.EmployeeIDs {
			if seen[employeeID] {
				continue
			}
			seen[employeeID] = true

			if _, err := s.employeeRepo.GetByID(ctx, id.TenantID, employeeID); err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					slog.DebugContext(ctx, "skipping employee outside tenant", "employee_id", employeeID)
					continue
				}
				return fmt.Errorf("failed to get employee: %w", err)
			}

			cfg, err := s.payrollRepo.GetSalaryConfig(ctx, employeeID)
			if err != nil {
				if errors.Is(err, payroll.ErrSalaryConfigNotFound) {
					slog.DebugContext(ctx, "skipping employee without salary config", "employee_id", employeeID)
					continue
				}
				return fmt.Errorf("failed to get salary config: %w", err)
			}

			// Draft items carry base pay only; allowances and deductions
			// belong to the payslip computation.
			if _, err := s.payrollRepo.CreateItem(ctx, payroll.PayrollItem{
				PayrollRunID: run.ID,
				EmployeeID:   employeeID,
				BaseSalary:   cfg.BaseSalary,
				NetSalary:    cfg.BaseSalary,
			}); err != nil {
				return fmt.Errorf("failed to create payroll item: %w", err)
			}
		}

		run.Items, err = s.payrollRepo.ListItems(ctx, run.ID)
		return err
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return payroll.NewPayrollRunResponse(run), nil
}

// Submit implements payroll.PayrollService.
func (s *PayrollServiceImpl) Submit(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRun(ctx, id.TenantID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if err := s.payrollRepo.TransitionRun(ctx, id.TenantID, run.ID, payroll.RunStatusDraft, payroll.RunStatusPending, nil); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	s.approvals.LogApproval(ctx, approval.LogEntry{
		TenantID:    id.TenantID,
		EntityType:  approval.EntityPayrollRun,
		EntityID:    run.ID,
		Action:      approval.ActionSubmit,
		PerformedBy: id.UserID,
	})

	return s.GetRun(ctx, run.ID)
}

// Approve implements payroll.PayrollService.
func (s *PayrollServiceImpl) Approve(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if id.Role != user.RoleAdmin {
		return payroll.PayrollRunResponse{}, user.ErrInsufficientPermissions
	}

	run, err := s.payrollRepo.GetRun(ctx, id.TenantID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	approver := id.UserID
	if err := s.payrollRepo.TransitionRun(ctx, id.TenantID, run.ID, payroll.RunStatusPending, payroll.RunStatusApproved, &approver); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	s.approvals.LogApproval(ctx, approval.LogEntry{
		TenantID:    id.TenantID,
		EntityType:  approval.EntityPayrollRun,
		EntityID:    run.ID,
		Action:      approval.ActionApprove,
		PerformedBy: id.UserID,
	})
	s.approvals.Notify(ctx, notification.CreateNotificationRequest{
		TenantID: id.TenantID,
		UserID:   run.CreatedBy,
		Type:     notification.TypePayrollApproved,
		Message:  fmt.Sprintf("Payroll run %s was approved", run.Period),
		Data:     map[string]interface{}{"payroll_run_id": run.ID},
	})

	return s.GetRun(ctx, run.ID)
}

// ListRuns implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.PayrollRunFilter) (payroll.ListPayrollRunResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, err
	}

	params := filter.Params.Normalize(payroll.SortColumns, payroll.DefaultSort)
	runs, total, err := s.payrollRepo.ListRuns(ctx, id.TenantID, params)
	if err != nil {
		return payroll.ListPayrollRunResponse{}, fmt.Errorf("failed to list payroll runs: %w", err)
	}

	data := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		data = append(data, payroll.NewPayrollRunResponse(run))
	}

	return payroll.ListPayrollRunResponse{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.TotalPages(total, params.Limit),
	}, nil
}

// GetRun implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetRun(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRun(ctx, id.TenantID, runID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	run.Items, err = s.payrollRepo.ListItems(ctx, run.ID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to list payroll items: %w", err)
	}

	return payroll.NewPayrollRunResponse(run), nil
}

// CreatePayslip implements payroll.PayrollService. Values missing from the
// request fall back to the employee's salary config.
func (s *PayrollServiceImpl) CreatePayslip(ctx context.Context, req payroll.CreatePayslipRequest) (payroll.PayslipResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, id.TenantID, req.EmployeeID); err != nil {
		return payroll.PayslipResponse{}, err
	}

	cfg, err := s.payrollRepo.GetSalaryConfig(ctx, req.EmployeeID)
	hasConfig := err == nil
	if err != nil && !errors.Is(err, payroll.ErrSalaryConfigNotFound) {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get salary config: %w", err)
	}
	if !hasConfig && req.BaseSalary == nil {
		return payroll.PayslipResponse{}, payroll.ErrSalaryNotFound
	}

	base := cfg.BaseSalary
	if req.BaseSalary != nil {
		base = *req.BaseSalary
	}
	allowances := componentsOr(req.Allowances, cfg.Allowances)
	deductions := componentsOr(req.Deductions, cfg.Deductions)

	net := payroll.NetSalary(base, allowances, deductions)
	if net.IsNegative() {
		return payroll.PayslipResponse{}, payroll.ErrNegativeNetSalary
	}

	start, end := req.Period()
	created, err := s.payrollRepo.CreatePayslip(ctx, payroll.Payslip{
		TenantID:    id.TenantID,
		EmployeeID:  req.EmployeeID,
		PeriodStart: start,
		PeriodEnd:   end,
		BaseSalary:  base,
		Allowances:  allowances,
		Deductions:  deductions,
		NetSalary:   net,
	})
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return payroll.NewPayslipResponse(created), nil
}

// componentsOr prefers explicit values, then the configured ones.
func componentsOr(explicit, configured map[string]decimal.Decimal) map[string]decimal.Decimal {
	if explicit != nil {
		return explicit
	}
	if configured != nil {
		return configured
	}
	return map[string]decimal.Decimal{}
}

// GetPayslip implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, payslipID string) (payroll.PayslipResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payrollRepo.GetPayslip(ctx, id.TenantID, payslipID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	// Employees can only read their own payslip
	if id.IsEmployee() && (p.EmployeeUserID == nil || *p.EmployeeUserID != id.UserID) {
		return payroll.PayslipResponse{}, user.ErrInsufficientPermissions
	}

	return payroll.NewPayslipResponse(p), nil
}
