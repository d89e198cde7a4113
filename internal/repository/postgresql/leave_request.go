package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveSelect = `
		SELECT l.id, l.tenant_id, l.employee_id, l.type, l.start_date, l.end_date, l.days,
			l.reason, l.status, l.approver_id, l.created_at, l.updated_at,
			u.name, e.nik, e.user_id
		FROM leave_requests l
		JOIN employees e ON e.id = l.employee_id
		JOIN users u ON u.id = e.user_id
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.TenantID, &lr.EmployeeID, &lr.Type, &lr.StartDate, &lr.EndDate, &lr.Days,
		&lr.Reason, &lr.Status, &lr.ApproverID, &lr.CreatedAt, &lr.UpdatedAt,
		&lr.EmployeeName, &lr.EmployeeNIK, &lr.EmployeeUserID,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (tenant_id, employee_id, type, start_date, end_date, days, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		req.TenantID, req.EmployeeID, req.Type, req.StartDate, req.EndDate, req.Days, req.Reason, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return req, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, leaveSelect+` WHERE l.tenant_id = $1 AND l.id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, tenantID string, filter leave.ListFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)
	params := filter.Params.Normalize(leave.SortColumns, leave.DefaultSort)

	conditions := []string{"l.tenant_id = $1"}
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("l.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leave_requests l WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, leaveSelect, whereClause, params.OrderBy(leave.SortColumns), argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// HasApprovedOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasApprovedOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND status = $2
			  AND start_date <= $3 AND end_date >= $4
		)
	`, employeeID, leave.StatusApproved, end, start).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return exists, nil
}

// SumApprovedDays implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumApprovedDays(ctx context.Context, employeeID string, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	var used int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(days), 0)
		FROM leave_requests
		WHERE employee_id = $1 AND status = $2
		  AND EXTRACT(YEAR FROM start_date) = $3
	`, employeeID, leave.StatusApproved, year).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("failed to sum approved leave days: %w", err)
	}
	return used, nil
}

// LockEmployee implements leave.LeaveRequestRepository. It must run inside a
// transaction to have any effect.
func (r *leaveRequestRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee: %w", err)
	}
	return nil
}

// UpdateStatusIfPending implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatusIfPending(ctx context.Context, tenantID, id string, status leave.Status, approverID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests
		SET status = $1, approver_id = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4 AND status = $5
	`, status, approverID, tenantID, id, leave.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update leave status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	return nil
}
