package employee

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	hashCost     int
}

type Option func(*EmployeeServiceImpl)

// WithHashCost lowers the bcrypt cost, for tests.
func WithHashCost(cost int) Option {
	return func(s *EmployeeServiceImpl) { s.hashCost = cost }
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	opts ...Option,
) employee.EmployeeService {
	s := &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		hashCost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	params := filter.Params.Normalize(employee.SortColumns, employee.DefaultSort)
	employees, total, err := s.employeeRepo.List(ctx, id.TenantID, params)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}

	return employee.ListEmployeeResponse{
		Employees:  responses,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.TotalPages(total, params.Limit),
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, employeeID string) (employee.EmployeeResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id.TenantID, employeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Employees can only view their own record
	if id.IsEmployee() && emp.UserID != id.UserID {
		return employee.EmployeeResponse{}, user.ErrInsufficientPermissions
	}

	return employee.NewEmployeeResponse(emp), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.CreateEmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("generate temp password: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), s.hashCost)
	if err != nil {
		return employee.CreateEmployeeResponse{}, fmt.Errorf("hash temp password: %w", err)
	}

	var resp employee.CreateEmployeeResponse
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		newUser, err := s.userRepo.Create(ctx, user.User{
			TenantID:     id.TenantID,
			Name:         strings.TrimSpace(req.Name),
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: string(passwordHash),
			Role:         user.Role(req.Role),
			Status:       user.StatusActive,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return employee.ErrEmailExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		newEmployee, err := s.employeeRepo.Create(ctx, employee.Employee{
			TenantID:   id.TenantID,
			UserID:     newUser.ID,
			NIK:        req.NIK,
			Position:   req.Position,
			Department: req.Department,
			JoinDate:   req.ParsedJoinDate(),
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		resp = employee.CreateEmployeeResponse{
			ID:           newEmployee.ID,
			UserID:       newUser.ID,
			TempPassword: tempPassword,
		}
		return nil
	})
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}
	return resp, nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, id.TenantID, req.ID)
		if err != nil {
			return err
		}
		u, err := s.userRepo.GetByID(ctx, emp.UserID)
		if err != nil {
			return err
		}

		if req.Status != nil && user.Status(*req.Status) == user.StatusInactive && u.ID == id.UserID {
			return employee.ErrCannotDeactivateSelf
		}

		applyUserChanges(&u, req)
		if err := s.userRepo.Update(ctx, u); err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return employee.ErrEmailExists
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		applyEmployeeChanges(&emp, req)
		if err := s.employeeRepo.Update(ctx, emp); err != nil {
			return fmt.Errorf("failed to update employee: %w", err)
		}

		updated, err = s.employeeRepo.GetByID(ctx, id.TenantID, req.ID)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return employee.NewEmployeeResponse(updated), nil
}

func applyUserChanges(u *user.User, req employee.UpdateEmployeeRequest) {
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.Status != nil {
		u.Status = user.Status(*req.Status)
	}
}

func applyEmployeeChanges(e *employee.Employee, req employee.UpdateEmployeeRequest) {
	if req.NIK != nil {
		e.NIK = *req.NIK
	}
	if req.Position != nil {
		e.Position = *req.Position
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.JoinDate != nil {
		// Validate already checked the format.
		if d, ok := validator.IsValidDate(*req.JoinDate); ok {
			e.JoinDate = d
		}
	}
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, employeeID string) error {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByID(ctx, id.TenantID, employeeID)
	if err != nil {
		return err
	}
	if emp.UserID == id.UserID {
		return employee.ErrCannotDeactivateSelf
	}

	return s.userRepo.UpdateStatus(ctx, emp.UserID, user.StatusInactive)
}

// generateTempPassword returns Temp@NNNN with four random digits.
func generateTempPassword() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Temp@%d", n.Int64()+1000), nil
}
