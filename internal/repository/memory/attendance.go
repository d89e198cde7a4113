package memory

import (
	"context"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func (r *attendanceRepository) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.ID = newID()
	a.CreatedAt = r.s.stamp()
	a.UpdatedAt = a.CreatedAt
	r.s.attendance[a.ID] = a
	return a, nil
}

// newestLocked returns the matching record with the greatest clock_in.
func (r *attendanceRepository) newestLocked(match func(a attendance.Attendance) bool) (attendance.Attendance, error) {
	var found *attendance.Attendance
	for _, a := range r.s.attendance {
		if !match(a) {
			continue
		}
		if found == nil || a.ClockIn.After(found.ClockIn) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *found, nil
}

func (r *attendanceRepository) GetOpenSessionBetween(_ context.Context, employeeID string, from, to time.Time) (attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.newestLocked(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && a.IsOpen() && inRange(a.ClockIn, from, to)
	})
}

func (r *attendanceRepository) GetLatestOpenSession(_ context.Context, employeeID string) (attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.newestLocked(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && a.IsOpen()
	})
}

func (r *attendanceRepository) UpdateNote(_ context.Context, id string, note string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.Note = &note
	a.UpdatedAt = r.s.stamp()
	r.s.attendance[id] = a
	return nil
}

func (r *attendanceRepository) Close(_ context.Context, id string, clockOut time.Time, note *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendance[id]
	if !ok || !a.IsOpen() {
		return attendance.ErrNoActiveClockIn
	}
	a.ClockOut = &clockOut
	a.Note = note
	a.UpdatedAt = r.s.stamp()
	r.s.attendance[id] = a
	return nil
}

func (r *attendanceRepository) List(_ context.Context, tenantID string, filter attendance.ListFilter) ([]attendance.Attendance, int64, error) {
	params := filter.Params.Normalize(attendance.SortColumns, attendance.DefaultSort)

	r.s.mu.RLock()
	var rows []attendance.Attendance
	for _, a := range r.s.attendance {
		if a.TenantID != tenantID || !inRange(a.ClockIn, filter.From, filter.To) {
			continue
		}
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if e, ok := r.s.employees[a.EmployeeID]; ok {
			a.EmployeeNIK = e.NIK
			a.EmployeeName = r.s.joinEmployeeLocked(e).Name
		}
		rows = append(rows, a)
	}
	r.s.mu.RUnlock()

	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "clock_out":
		sortStable(rows, desc, func(a, b attendance.Attendance) bool {
			return clockOutBefore(a.ClockOut, b.ClockOut)
		})
	case "name":
		sortStable(rows, desc, func(a, b attendance.Attendance) bool { return a.EmployeeName < b.EmployeeName })
	case "nik":
		sortStable(rows, desc, func(a, b attendance.Attendance) bool { return a.EmployeeNIK < b.EmployeeNIK })
	default:
		sortStable(rows, desc, func(a, b attendance.Attendance) bool { return a.ClockIn.Before(b.ClockIn) })
	}

	return page(rows, params.Offset(), params.Limit), int64(len(rows)), nil
}

func (r *attendanceRepository) FindByClockIn(_ context.Context, tenantID, employeeID string, clockIn time.Time) (attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.attendance {
		if a.TenantID == tenantID && a.EmployeeID == employeeID && a.ClockIn.Equal(clockIn) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepository) FindFirstBetween(_ context.Context, tenantID, employeeID string, from, to time.Time) (attendance.Attendance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *attendance.Attendance
	for _, a := range r.s.attendance {
		if a.TenantID != tenantID || a.EmployeeID != employeeID || !inRange(a.ClockIn, from, to) {
			continue
		}
		if found == nil || a.ClockIn.Before(found.ClockIn) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *found, nil
}

func (r *attendanceRepository) UpdateTimes(_ context.Context, id string, clockIn time.Time, clockOut *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.ClockIn = clockIn
	a.ClockOut = clockOut
	a.UpdatedAt = r.s.stamp()
	r.s.attendance[id] = a
	return nil
}

// inRange reports from <= t < to.
func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// clockOutBefore orders open sessions last, as Postgres does for NULLs in
// ascending order.
func clockOutBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

type correctionRepository struct {
	s *Store
}

func (r *correctionRepository) withRequesterLocked(c attendance.Correction) attendance.Correction {
	if u, ok := r.s.users[c.RequestedBy]; ok {
		c.RequesterName = u.Name
	}
	return c
}

func (r *correctionRepository) Create(_ context.Context, c attendance.Correction) (attendance.Correction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = newID()
	c.CreatedAt = r.s.stamp()
	c.UpdatedAt = c.CreatedAt
	r.s.corrections[c.ID] = c
	return c, nil
}

func (r *correctionRepository) GetByID(_ context.Context, tenantID, id string) (attendance.Correction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.corrections[id]
	if !ok || c.TenantID != tenantID {
		return attendance.Correction{}, attendance.ErrCorrectionNotFound
	}
	return r.withRequesterLocked(c), nil
}

func (r *correctionRepository) ListPending(_ context.Context, tenantID string) ([]attendance.Correction, error) {
	r.s.mu.RLock()
	out := []attendance.Correction{}
	for _, c := range r.s.corrections {
		if c.TenantID == tenantID && c.IsPending() {
			out = append(out, r.withRequesterLocked(c))
		}
	}
	r.s.mu.RUnlock()

	sortStable(out, false, func(a, b attendance.Correction) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out, nil
}

func (r *correctionRepository) UpdateStatusIfPending(_ context.Context, tenantID, id string, status attendance.CorrectionStatus, approverID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.corrections[id]
	if !ok || c.TenantID != tenantID || !c.IsPending() {
		return attendance.ErrCorrectionAlreadyProcessed
	}
	c.Status = status
	c.ApprovedBy = &approverID
	c.UpdatedAt = r.s.stamp()
	r.s.corrections[id] = c
	return nil
}
