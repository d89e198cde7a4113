package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
)

type CorrectionServiceImpl struct {
	tx             database.Transactor
	corrections    attendance.CorrectionRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	approvals      approval.Service
	clock          *timeutil.Clock
}

func NewCorrectionService(
	tx database.Transactor,
	corrections attendance.CorrectionRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	approvals approval.Service,
	clock *timeutil.Clock,
) attendance.CorrectionService {
	return &CorrectionServiceImpl{
		tx:             tx,
		corrections:    corrections,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		approvals:      approvals,
		clock:          clock,
	}
}

// RequestCorrection implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) RequestCorrection(ctx context.Context, req attendance.CreateCorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	id, emp, err := callerEmployee(ctx, s.employeeRepo)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	c := req.Correction()
	c.TenantID = id.TenantID
	c.EmployeeID = emp.ID
	c.RequestedBy = id.UserID
	c.Status = attendance.CorrectionStatusPending

	created, err := s.corrections.Create(ctx, c)
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to create correction: %w", err)
	}
	return attendance.NewCorrectionResponse(created), nil
}

// ListPending implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) ListPending(ctx context.Context) ([]attendance.CorrectionResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.corrections.ListPending(ctx, id.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}

	out := make([]attendance.CorrectionResponse, 0, len(pending))
	for _, c := range pending {
		out = append(out, attendance.NewCorrectionResponse(c))
	}
	return out, nil
}

// Approve implements attendance.CorrectionService. The status change and the
// attendance write commit together.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, correctionID string) (attendance.CorrectionResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	var c attendance.Correction
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.corrections.GetByID(ctx, id.TenantID, correctionID)
		if err != nil {
			return err
		}
		if !c.IsPending() {
			return attendance.ErrCorrectionAlreadyProcessed
		}

		target, found, err := s.findTarget(ctx, c)
		if err != nil {
			return err
		}
		if !found && c.NewClockIn == nil {
			return attendance.ErrCorrectionNeedsClockIn
		}

		if err := s.corrections.UpdateStatusIfPending(ctx, id.TenantID, c.ID, attendance.CorrectionStatusApproved, id.UserID); err != nil {
			return err
		}

		if found {
			clockIn, clockOut := target.ClockIn, target.ClockOut
			if c.NewClockIn != nil {
				clockIn = *c.NewClockIn
			}
			if c.NewClockOut != nil {
				clockOut = c.NewClockOut
			}
			return s.attendanceRepo.UpdateTimes(ctx, target.ID, clockIn, clockOut)
		}

		note := attendance.NoteCorrected
		_, err = s.attendanceRepo.Create(ctx, attendance.Attendance{
			TenantID:   id.TenantID,
			EmployeeID: c.EmployeeID,
			ClockIn:    *c.NewClockIn,
			ClockOut:   c.NewClockOut,
			Note:       &note,
		})
		return err
	})
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	s.afterDecision(ctx, id, c, approval.ActionApprove)
	return s.reload(ctx, id.TenantID, c.ID)
}

// findTarget picks the attendance row a correction applies to: the exact
// old clock-in first, then the earliest session on the same local date.
func (s *CorrectionServiceImpl) findTarget(ctx context.Context, c attendance.Correction) (attendance.Attendance, bool, error) {
	if c.OldClockIn != nil {
		a, err := s.attendanceRepo.FindByClockIn(ctx, c.TenantID, c.EmployeeID, *c.OldClockIn)
		if err == nil {
			return a, true, nil
		}
		if !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, false, fmt.Errorf("failed to find attendance by clock-in: %w", err)
		}
	}

	from, to, err := s.clock.DayBounds(c.Date.Format(timeutil.DateLayout))
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	a, err := s.attendanceRepo.FindFirstBetween(ctx, c.TenantID, c.EmployeeID, from, to)
	if err == nil {
		return a, true, nil
	}
	if errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, false, nil
	}
	return attendance.Attendance{}, false, fmt.Errorf("failed to find attendance by date: %w", err)
}

// Reject implements attendance.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, correctionID string) (attendance.CorrectionResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	c, err := s.corrections.GetByID(ctx, id.TenantID, correctionID)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if err := s.corrections.UpdateStatusIfPending(ctx, id.TenantID, c.ID, attendance.CorrectionStatusRejected, id.UserID); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	s.afterDecision(ctx, id, c, approval.ActionReject)
	return s.reload(ctx, id.TenantID, c.ID)
}

func (s *CorrectionServiceImpl) afterDecision(ctx context.Context, id auth.Identity, c attendance.Correction, action approval.Action) {
	s.approvals.LogApproval(ctx, approval.LogEntry{
		TenantID:    id.TenantID,
		EntityType:  approval.EntityAttendanceCorrection,
		EntityID:    c.ID,
		Action:      action,
		PerformedBy: id.UserID,
	})

	notifType, verb := notification.TypeCorrectionApproved, "approved"
	if action == approval.ActionReject {
		notifType, verb = notification.TypeCorrectionRejected, "rejected"
	}
	s.approvals.Notify(ctx, notification.CreateNotificationRequest{
		TenantID: id.TenantID,
		UserID:   c.RequestedBy,
		Type:     notifType,
		Message:  "Your attendance correction was " + verb,
		Data:     map[string]interface{}{"correction_id": c.ID},
	})
}

func (s *CorrectionServiceImpl) reload(ctx context.Context, tenantID, correctionID string) (attendance.CorrectionResponse, error) {
	c, err := s.corrections.GetByID(ctx, tenantID, correctionID)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	return attendance.NewCorrectionResponse(c), nil
}
