package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, tenant_id, employee_id, clock_in, clock_out, ip, note, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.TenantID, &att.EmployeeID, &att.ClockIn, &att.ClockOut,
		&att.IP, &att.Note, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance (tenant_id, employee_id, clock_in, clock_out, ip, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newAttendance.TenantID,
		newAttendance.EmployeeID,
		newAttendance.ClockIn,
		newAttendance.ClockOut,
		newAttendance.IP,
		newAttendance.Note,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetOpenSessionBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSessionBetween(ctx context.Context, employeeID string, from, to time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE employee_id = $1
		  AND clock_out IS NULL
		  AND clock_in >= $2 AND clock_in < $3
		ORDER BY clock_in DESC
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, from, to))
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return att, err
}

// GetLatestOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatestOpenSession(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE employee_id = $1
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID))
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, fmt.Errorf("failed to get latest open session: %w", err)
	}
	return att, err
}

// UpdateNote implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateNote(ctx context.Context, id string, note string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE attendance SET note = $1, updated_at = NOW() WHERE id = $2`, note, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Close implements attendance.AttendanceRepository. A session closed
// concurrently reports ErrNoActiveClockIn.
func (a *attendanceRepository) Close(ctx context.Context, id string, clockOut time.Time, note *string) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance
		SET clock_out = $1, note = $2, updated_at = NOW()
		WHERE id = $3 AND clock_out IS NULL
	`
	tag, err := q.Exec(ctx, query, clockOut, note, id)
	if err != nil {
		return fmt.Errorf("failed to close attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNoActiveClockIn
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, tenantID string, filter attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)
	params := filter.Params.Normalize(attendance.SortColumns, attendance.DefaultSort)

	conditions := []string{"a.tenant_id = $1", "a.clock_in >= $2", "a.clock_in < $3"}
	args := []interface{}{tenantID, filter.From, filter.To}
	argIdx := 4

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance a WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.tenant_id, a.employee_id, a.clock_in, a.clock_out, a.ip, a.note,
			a.created_at, a.updated_at, u.name, e.nik
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		JOIN users u ON u.id = e.user_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, whereClause, params.OrderBy(attendance.SortColumns), argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		var att attendance.Attendance
		err := rows.Scan(
			&att.ID, &att.TenantID, &att.EmployeeID, &att.ClockIn, &att.ClockOut, &att.IP, &att.Note,
			&att.CreatedAt, &att.UpdatedAt, &att.EmployeeName, &att.EmployeeNIK,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// FindByClockIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindByClockIn(ctx context.Context, tenantID, employeeID string, clockIn time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE tenant_id = $1 AND employee_id = $2 AND clock_in = $3
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, tenantID, employeeID, clockIn))
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, fmt.Errorf("failed to find attendance by clock-in: %w", err)
	}
	return att, err
}

// FindFirstBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindFirstBetween(ctx context.Context, tenantID, employeeID string, from, to time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE tenant_id = $1 AND employee_id = $2
		  AND clock_in >= $3 AND clock_in < $4
		ORDER BY clock_in ASC
		LIMIT 1
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, tenantID, employeeID, from, to))
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, fmt.Errorf("failed to find attendance in range: %w", err)
	}
	return att, err
}

// UpdateTimes implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateTimes(ctx context.Context, id string, clockIn time.Time, clockOut *time.Time) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance SET clock_in = $1, clock_out = $2, updated_at = NOW() WHERE id = $3
	`, clockIn, clockOut, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance times: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
