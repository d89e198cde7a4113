package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
		SELECT e.id, e.tenant_id, e.user_id, e.nik, e.position, e.department, e.join_date,
			e.created_at, e.updated_at, u.name, u.email, u.role, u.status
		FROM employees e
		JOIN users u ON u.id = e.user_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var found employee.Employee
	err := row.Scan(
		&found.ID, &found.TenantID, &found.UserID, &found.NIK, &found.Position, &found.Department,
		&found.JoinDate, &found.CreatedAt, &found.UpdatedAt,
		&found.Name, &found.Email, &found.Role, &found.Status,
	)
	return found, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	found, err := scanEmployee(q.QueryRow(ctx, employeeSelect+` WHERE e.tenant_id = $1 AND e.id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return found, nil
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, tenantID, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	found, err := scanEmployee(q.QueryRow(ctx, employeeSelect+` WHERE e.tenant_id = $1 AND e.user_id = $2`, tenantID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by user: %w", err)
	}
	return found, nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, tenantID string, params pagination.Params) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)
	params = params.Normalize(employee.SortColumns, employee.DefaultSort)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE e.tenant_id = $1
		ORDER BY %s
		LIMIT $2 OFFSET $3
	`, employeeSelect, params.OrderBy(employee.SortColumns))

	rows, err := q.Query(ctx, query, tenantID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Create implements employee.EmployeeRepository. The user row must exist.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (tenant_id, user_id, nik, position, department, join_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newEmployee.TenantID,
		newEmployee.UserID,
		newEmployee.NIK,
		newEmployee.Position,
		newEmployee.Department,
		newEmployee.JoinDate,
	).Scan(&newEmployee.ID, &newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return newEmployee, nil
}

// Update implements employee.EmployeeRepository. User columns are owned by
// the user repository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET nik = $1, position = $2, department = $3, join_date = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	tag, err := q.Exec(ctx, query, emp.NIK, emp.Position, emp.Department, emp.JoinDate, emp.TenantID, emp.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
