package memory

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
)

type employeeRepository struct {
	s *Store
}

// joinLocked fills the user columns the SQL repository gets from its join.
func (s *Store) joinEmployeeLocked(e employee.Employee) employee.Employee {
	if u, ok := s.users[e.UserID]; ok {
		e.Name = u.Name
		e.Email = u.Email
		e.Role = u.Role
		e.Status = u.Status
	}
	return e
}

func (r *employeeRepository) GetByID(_ context.Context, tenantID, id string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.employees[id]
	if !ok || e.TenantID != tenantID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.s.joinEmployeeLocked(e), nil
}

func (r *employeeRepository) GetByUserID(_ context.Context, tenantID, userID string) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, e := range r.s.employees {
		if e.TenantID == tenantID && e.UserID == userID {
			return r.s.joinEmployeeLocked(e), nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) List(_ context.Context, tenantID string, params pagination.Params) ([]employee.Employee, int64, error) {
	params = params.Normalize(employee.SortColumns, employee.DefaultSort)

	r.s.mu.RLock()
	var all []employee.Employee
	for _, e := range r.s.employees {
		if e.TenantID == tenantID {
			all = append(all, r.s.joinEmployeeLocked(e))
		}
	}
	r.s.mu.RUnlock()

	desc := params.SortOrder == "desc"
	switch params.SortBy {
	case "name":
		sortStable(all, desc, func(a, b employee.Employee) bool { return a.Name < b.Name })
	case "nik":
		sortStable(all, desc, func(a, b employee.Employee) bool { return a.NIK < b.NIK })
	case "join_date":
		sortStable(all, desc, func(a, b employee.Employee) bool { return a.JoinDate.Before(b.JoinDate) })
	case "department":
		sortStable(all, desc, func(a, b employee.Employee) bool { return a.Department < b.Department })
	default:
		sortStable(all, desc, func(a, b employee.Employee) bool { return a.CreatedAt.Before(b.CreatedAt) })
	}

	return page(all, params.Offset(), params.Limit), int64(len(all)), nil
}

func (r *employeeRepository) Create(_ context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	newEmployee.ID = newID()
	newEmployee.CreatedAt = r.s.stamp()
	newEmployee.UpdatedAt = newEmployee.CreatedAt
	r.s.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *employeeRepository) Update(_ context.Context, e employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.employees[e.ID]
	if !ok || existing.TenantID != e.TenantID {
		return employee.ErrEmployeeNotFound
	}
	existing.NIK = e.NIK
	existing.Position = e.Position
	existing.Department = e.Department
	existing.JoinDate = e.JoinDate
	existing.UpdatedAt = r.s.stamp()
	r.s.employees[e.ID] = existing
	return nil
}
