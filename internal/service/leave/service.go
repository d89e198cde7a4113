package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/timeutil"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	user.UserRepository
	approvals approval.Service
	clock     *timeutil.Clock
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	userRepository user.UserRepository,
	approvals approval.Service,
	clock *timeutil.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		UserRepository:         userRepository,
		approvals:              approvals,
		clock:                  clock,
	}
}

func (l *LeaveServiceImpl) callerEmployee(ctx context.Context) (auth.Identity, employee.Employee, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return auth.Identity{}, employee.Employee{}, err
	}
	emp, err := l.EmployeeRepository.GetByUserID(ctx, id.TenantID, id.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return id, employee.Employee{}, employee.ErrProfileNotFound
		}
		return id, employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return id, emp, nil
}

// RequestLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) RequestLeave(ctx context.Context, req leave.CreateLeaveRequest) (leave.CreateLeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.CreateLeaveResponse{}, err
	}

	id, emp, err := l.callerEmployee(ctx)
	if err != nil {
		return leave.CreateLeaveResponse{}, err
	}

	u, err := l.UserRepository.GetByID(ctx, id.UserID)
	if err != nil {
		return leave.CreateLeaveResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.IsActive() {
		return leave.CreateLeaveResponse{}, user.ErrAccountInactive
	}

	start, end := req.Range()
	overlap, err := l.LeaveRequestRepository.HasApprovedOverlap(ctx, emp.ID, start, end)
	if err != nil {
		return leave.CreateLeaveResponse{}, fmt.Errorf("failed to check overlap: %w", err)
	}
	if overlap {
		return leave.CreateLeaveResponse{}, leave.ErrOverlappingLeave
	}

	created, err := l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		TenantID:   id.TenantID,
		EmployeeID: emp.ID,
		Type:       req.Type,
		StartDate:  start,
		EndDate:    end,
		Days:       *req.Days,
		Reason:     req.Reason,
		Status:     leave.StatusPending,
	})
	if err != nil {
		return leave.CreateLeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return leave.CreateLeaveResponse{ID: created.ID, Status: string(created.Status)}, nil
}

// UpdateStatus implements leave.LeaveService. The balance check, the row lock
// and the status change share one transaction so two approvals cannot both
// spend the last days.
func (l *LeaveServiceImpl) UpdateStatus(ctx context.Context, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var request leave.LeaveRequest
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = l.LeaveRequestRepository.GetByID(ctx, id.TenantID, req.ID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		if req.Status == leave.StatusApproved {
			if err := l.LeaveRequestRepository.LockEmployee(ctx, request.EmployeeID); err != nil {
				return fmt.Errorf("failed to lock employee leave: %w", err)
			}
			balance, err := l.balance(ctx, request.EmployeeID)
			if err != nil {
				return err
			}
			if !balance.Allows(request.Days) {
				return leave.ErrInsufficientBalance
			}
		}

		return l.LeaveRequestRepository.UpdateStatusIfPending(ctx, id.TenantID, request.ID, req.Status, id.UserID)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	action, notifType, verb := approval.ActionApprove, notification.TypeLeaveApproved, "approved"
	if req.Status == leave.StatusRejected {
		action, notifType, verb = approval.ActionReject, notification.TypeLeaveRejected, "rejected"
	}
	l.approvals.LogApproval(ctx, approval.LogEntry{
		TenantID:    id.TenantID,
		EntityType:  approval.EntityLeaveRequest,
		EntityID:    request.ID,
		Action:      action,
		PerformedBy: id.UserID,
		Comment:     req.Comment,
	})
	l.approvals.Notify(ctx, notification.CreateNotificationRequest{
		TenantID: id.TenantID,
		UserID:   request.EmployeeUserID,
		Type:     notifType,
		Message:  "Your leave request was " + verb,
		Data:     map[string]interface{}{"leave_id": request.ID},
	})

	updated, err := l.LeaveRequestRepository.GetByID(ctx, id.TenantID, request.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.NewLeaveRequestResponse(updated), nil
}

func (l *LeaveServiceImpl) balance(ctx context.Context, employeeID string) (leave.Balance, error) {
	year := l.clock.CurrentYear()
	used, err := l.LeaveRequestRepository.SumApprovedDays(ctx, employeeID, year)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to sum approved days: %w", err)
	}
	return leave.Balance{Allowance: leave.AnnualAllowance, Used: used, Year: year}, nil
}

// ListLeaves implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}

	lf := leave.ListFilter{Params: filter.Params.Normalize(leave.SortColumns, leave.DefaultSort)}
	if id.IsEmployee() {
		_, emp, err := l.callerEmployee(ctx)
		if errors.Is(err, employee.ErrProfileNotFound) {
			return leave.ListLeaveResponse{Data: []leave.LeaveRequestResponse{}, Page: lf.Page, Limit: lf.Limit}, nil
		}
		if err != nil {
			return leave.ListLeaveResponse{}, err
		}
		lf.EmployeeID = &emp.ID
	}

	requests, total, err := l.LeaveRequestRepository.List(ctx, id.TenantID, lf)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	data := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		data = append(data, leave.NewLeaveRequestResponse(r))
	}

	return leave.ListLeaveResponse{
		Data:       data,
		Total:      total,
		Page:       lf.Page,
		Limit:      lf.Limit,
		TotalPages: pagination.TotalPages(total, lf.Limit),
	}, nil
}

// GetBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) GetBalance(ctx context.Context) (leave.BalanceResponse, error) {
	_, emp, err := l.callerEmployee(ctx)
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	b, err := l.balance(ctx, emp.ID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return leave.BalanceResponse{
		Allowance: b.Allowance,
		Used:      b.Used,
		Remaining: b.Remaining(),
		Year:      b.Year,
	}, nil
}
