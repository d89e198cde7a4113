package payroll

import "context"

type PayrollService interface {
	// Runs
	CreateDraft(ctx context.Context, req CreateDraftRequest) (PayrollRunResponse, error)
	Submit(ctx context.Context, id string) (PayrollRunResponse, error)
	Approve(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter PayrollRunFilter) (ListPayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)

	// Single payslip
	CreatePayslip(ctx context.Context, req CreatePayslipRequest) (PayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
}
