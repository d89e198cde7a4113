package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	clock *timeutil.Clock
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	clock *timeutil.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		clock:                clock,
	}
}

// callerEmployee resolves the Employee linked to the authenticated user.
func callerEmployee(ctx context.Context, repo employee.EmployeeRepository) (auth.Identity, employee.Employee, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return auth.Identity{}, employee.Employee{}, err
	}
	emp, err := repo.GetByUserID(ctx, id.TenantID, id.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.WarnContext(ctx, "employee profile not found", "user_id", id.UserID, "tenant_id", id.TenantID)
			return id, employee.Employee{}, employee.ErrProfileNotFound
		}
		return id, employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return id, emp, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	id, emp, err := callerEmployee(ctx, a.EmployeeRepository)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	now := a.clock.Now().UTC()
	from, to, err := a.clock.DayBounds(a.clock.LocalDate(now))
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	var created attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.AttendanceRepository.GetOpenSessionBetween(ctx, emp.ID, from, to)
		switch {
		case err == nil:
			// The earlier session stays open for a correction to fix.
			if err := a.AttendanceRepository.UpdateNote(ctx, open.ID, attendance.NoteMissingClockOut); err != nil {
				return fmt.Errorf("failed to flag open session: %w", err)
			}
		case !errors.Is(err, attendance.ErrAttendanceNotFound):
			return fmt.Errorf("failed to check open session: %w", err)
		}

		record := attendance.Attendance{
			TenantID:   id.TenantID,
			EmployeeID: emp.ID,
			ClockIn:    now,
			IP:         req.IP,
		}
		if a.clock.IsLate(now) {
			note := attendance.NoteLate
			record.Note = &note
		}

		created, err = a.AttendanceRepository.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	return attendance.ClockInResponse{
		ID:           created.ID,
		ClockIn:      created.ClockIn,
		ClockInLocal: a.clock.Format(created.ClockIn),
		Note:         created.Note,
	}, nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.ClockOutResponse, error) {
	_, emp, err := callerEmployee(ctx, a.EmployeeRepository)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	open, err := a.AttendanceRepository.GetLatestOpenSession(ctx, emp.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ClockOutResponse{}, attendance.ErrNoActiveClockIn
		}
		return attendance.ClockOutResponse{}, fmt.Errorf("failed to get open session: %w", err)
	}

	now := a.clock.Now().UTC()
	note := open.Note
	if hours, ok := a.clock.OvertimeHours(now); ok {
		joined := attendance.AppendNote(open.Note, attendance.OvertimeNote(hours))
		note = &joined
	}

	if err := a.AttendanceRepository.Close(ctx, open.ID, now, note); err != nil {
		return attendance.ClockOutResponse{}, err
	}

	return attendance.ClockOutResponse{
		ID:            open.ID,
		ClockOut:      now,
		ClockOutLocal: a.clock.Format(now),
		Note:          note,
	}, nil
}

// GetMonthly implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthly(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return a.list(ctx, filter)
}

// GetRecent implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecent(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Month == "" {
		filter.Month = a.clock.CurrentMonth()
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	resp, err := a.list(ctx, filter)
	if errors.Is(err, employee.ErrProfileNotFound) {
		params := filter.Params.Normalize(attendance.SortColumns, attendance.DefaultSort)
		return attendance.ListAttendanceResponse{Data: []attendance.AttendanceResponse{}, Page: params.Page, Limit: params.Limit}, nil
	}
	return resp, err
}

// scopedFilter builds the repository filter for a month, restricted to the
// caller's own rows for EMPLOYEE.
func (a *AttendanceServiceImpl) scopedFilter(ctx context.Context, month string, params pagination.Params) (auth.Identity, attendance.ListFilter, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return auth.Identity{}, attendance.ListFilter{}, err
	}

	from, to, err := a.clock.MonthBounds(month)
	if err != nil {
		return id, attendance.ListFilter{}, attendance.ErrInvalidMonth
	}

	lf := attendance.ListFilter{
		From:   from,
		To:     to,
		Params: params.Normalize(attendance.SortColumns, attendance.DefaultSort),
	}
	if id.IsEmployee() {
		_, emp, err := callerEmployee(ctx, a.EmployeeRepository)
		if err != nil {
			return id, attendance.ListFilter{}, err
		}
		lf.EmployeeID = &emp.ID
	}
	return id, lf, nil
}

func (a *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	id, lf, err := a.scopedFilter(ctx, filter.Month, filter.Params)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, id.TenantID, lf)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	data := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		data = append(data, a.toResponse(r))
	}

	return attendance.ListAttendanceResponse{
		Data:       data,
		Total:      total,
		Page:       lf.Page,
		Limit:      lf.Limit,
		TotalPages: pagination.TotalPages(total, lf.Limit),
	}, nil
}

func (a *AttendanceServiceImpl) toResponse(r attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Name:          r.EmployeeName,
		NIK:           r.EmployeeNIK,
		ClockIn:       r.ClockIn,
		ClockOut:      r.ClockOut,
		ClockInLocal:  a.clock.Format(r.ClockIn),
		ClockOutLocal: a.clock.FormatPtr(r.ClockOut),
		IP:            r.IP,
		Note:          r.Note,
	}
}
