package payroll

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
)

var SortColumns = map[string]string{
	"created_at": "created_at",
	"period":     "period",
	"status":     "status",
}

const DefaultSort = "created_at"

// PayrollRepository defines data access methods for payroll.
// Tenant-owned rows are always read with the tenantID to prevent cross-tenant access.
type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRun(ctx context.Context, tenantID, id string) (PayrollRun, error)
	ListRuns(ctx context.Context, tenantID string, params pagination.Params) ([]PayrollRun, int64, error)
	// TransitionRun moves a run from one status to the next. It returns
	// ErrInvalidRunTransition when the run is not in status from.
	TransitionRun(ctx context.Context, tenantID, id string, from, to RunStatus, approverID *string) error

	// Items
	CreateItem(ctx context.Context, item PayrollItem) (PayrollItem, error)
	ListItems(ctx context.Context, runID string) ([]PayrollItem, error)

	// Salary reference data
	GetSalaryConfig(ctx context.Context, employeeID string) (SalaryConfig, error)

	// Payslips
	CreatePayslip(ctx context.Context, p Payslip) (Payslip, error)
	GetPayslip(ctx context.Context, tenantID, id string) (Payslip, error)
}
