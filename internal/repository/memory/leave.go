package memory

import (
	"context"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/leave"
)

type leaveRepository struct {
	s *Store
}

func (r *leaveRepository) joinLocked(lr leave.LeaveRequest) leave.LeaveRequest {
	if e, ok := r.s.employees[lr.EmployeeID]; ok {
		lr.EmployeeNIK = e.NIK
		lr.EmployeeUserID = e.UserID
		lr.EmployeeName = r.s.joinEmployeeLocked(e).Name
	}
	return lr
}

func (r *leaveRepository) Create(_ context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req.ID = newID()
	req.CreatedAt = r.s.stamp()
	req.UpdatedAt = req.CreatedAt
	r.s.leaves[req.ID] = req
	return req, nil
}

func (r *leaveRepository) GetByID(_ context.Context, tenantID, id string) (leave.LeaveRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lr, ok := r.s.leaves[id]
	if !ok || lr.TenantID != tenantID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.joinLocked(lr), nil
}

func (r *leaveRepository) List(_ context.Context, tenantID string, filter leave.ListFilter) ([]leave.LeaveRequest, int64, error) {
	params := filter.Params.Normalize(leave.SortColumns, leave.DefaultSort)

	r.s.mu.RLock()
	var rows []leave.LeaveRequest
	for _, lr := range r.s.leaves {
		if lr.TenantID != tenantID {
			continue
		}
		if filter.EmployeeID != nil && lr.EmployeeID != *filter.EmployeeID {
			continue
		}
		rows = append(rows, r.joinLocked(lr))
	}
	r.s.mu.RUnlock()

	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "start_date":
		sortStable(rows, desc, func(a, b leave.LeaveRequest) bool { return a.StartDate.Before(b.StartDate) })
	case "end_date":
		sortStable(rows, desc, func(a, b leave.LeaveRequest) bool { return a.EndDate.Before(b.EndDate) })
	case "status":
		sortStable(rows, desc, func(a, b leave.LeaveRequest) bool { return a.Status < b.Status })
	case "name":
		sortStable(rows, desc, func(a, b leave.LeaveRequest) bool { return a.EmployeeName < b.EmployeeName })
	default:
		sortStable(rows, desc, func(a, b leave.LeaveRequest) bool { return a.CreatedAt.Before(b.CreatedAt) })
	}

	return page(rows, params.Offset(), params.Limit), int64(len(rows)), nil
}

func (r *leaveRepository) HasApprovedOverlap(_ context.Context, employeeID string, start, end time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, lr := range r.s.leaves {
		if lr.EmployeeID == employeeID && lr.Status == leave.StatusApproved && lr.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRepository) SumApprovedDays(_ context.Context, employeeID string, year int) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	used := 0
	for _, lr := range r.s.leaves {
		if lr.EmployeeID == employeeID && lr.Status == leave.StatusApproved && lr.StartDate.Year() == year {
			used += lr.Days
		}
	}
	return used, nil
}

// LockEmployee only checks existence. Serialisation comes from the
// transactor lock.
func (r *leaveRepository) LockEmployee(_ context.Context, employeeID string) error {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.employees[employeeID]; !ok {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *leaveRepository) UpdateStatusIfPending(_ context.Context, tenantID, id string, status leave.Status, approverID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lr, ok := r.s.leaves[id]
	if !ok || lr.TenantID != tenantID || !lr.IsPending() {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	lr.Status = status
	lr.ApproverID = &approverID
	lr.UpdatedAt = r.s.stamp()
	r.s.leaves[id] = lr
	return nil
}
