package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee lets an EMPLOYEE read only their own record.
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee onboards a User and Employee together and returns a
	// temporary password.
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (CreateEmployeeResponse, error)

	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// DeleteEmployee deactivates the linked user; rows are kept.
	DeleteEmployee(ctx context.Context, id string) error
}
