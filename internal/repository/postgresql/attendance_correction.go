package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}

const correctionSelect = `
		SELECT c.id, c.tenant_id, c.employee_id, c.date, c.old_clock_in, c.old_clock_out,
			c.new_clock_in, c.new_clock_out, c.reason, c.requested_by, c.status, c.approved_by,
			c.created_at, c.updated_at, u.name
		FROM attendance_corrections c
		JOIN users u ON u.id = c.requested_by
`

func scanCorrection(row pgx.Row) (attendance.Correction, error) {
	var c attendance.Correction
	err := row.Scan(
		&c.ID, &c.TenantID, &c.EmployeeID, &c.Date, &c.OldClockIn, &c.OldClockOut,
		&c.NewClockIn, &c.NewClockOut, &c.Reason, &c.RequestedBy, &c.Status, &c.ApprovedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.RequesterName,
	)
	return c, err
}

// Create implements attendance.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, c attendance.Correction) (attendance.Correction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_corrections (
			tenant_id, employee_id, date, old_clock_in, old_clock_out,
			new_clock_in, new_clock_out, reason, requested_by, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		c.TenantID, c.EmployeeID, c.Date, c.OldClockIn, c.OldClockOut,
		c.NewClockIn, c.NewClockOut, c.Reason, c.RequestedBy, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return attendance.Correction{}, fmt.Errorf("failed to create correction: %w", err)
	}
	return c, nil
}

// GetByID implements attendance.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, tenantID, id string) (attendance.Correction, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCorrection(q.QueryRow(ctx, correctionSelect+` WHERE c.tenant_id = $1 AND c.id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Correction{}, attendance.ErrCorrectionNotFound
		}
		return attendance.Correction{}, fmt.Errorf("failed to get correction: %w", err)
	}
	return c, nil
}

// ListPending implements attendance.CorrectionRepository.
func (r *correctionRepository) ListPending(ctx context.Context, tenantID string) ([]attendance.Correction, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, correctionSelect+`
		WHERE c.tenant_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC
	`, tenantID, attendance.CorrectionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending corrections: %w", err)
	}
	defer rows.Close()

	corrections := []attendance.Correction{}
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	return corrections, rows.Err()
}

// UpdateStatusIfPending implements attendance.CorrectionRepository.
func (r *correctionRepository) UpdateStatusIfPending(ctx context.Context, tenantID, id string, status attendance.CorrectionStatus, approverID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_corrections
		SET status = $1, approved_by = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4 AND status = $5
	`, status, approverID, tenantID, id, attendance.CorrectionStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update correction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCorrectionAlreadyProcessed
	}
	return nil
}
