package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/employee"
	"github.com/hrlite/hr-backend-go/internal/domain/tenant"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

type ProvisionerImpl struct {
	tx           database.Transactor
	tenantRepo   tenant.TenantRepository
	userRepo     user.UserRepository
	employeeRepo employee.EmployeeRepository
	hashCost     int
	now          func() time.Time
}

type Option func(*ProvisionerImpl)

// WithHashCost lowers the bcrypt cost, for tests.
func WithHashCost(cost int) Option {
	return func(p *ProvisionerImpl) { p.hashCost = cost }
}

func NewProvisioner(
	tx database.Transactor,
	tenantRepo tenant.TenantRepository,
	userRepo user.UserRepository,
	employeeRepo employee.EmployeeRepository,
	opts ...Option,
) tenant.Provisioner {
	p := &ProvisionerImpl{
		tx:           tx,
		tenantRepo:   tenantRepo,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		hashCost:     bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision implements tenant.Provisioner.
func (p *ProvisionerImpl) Provision(ctx context.Context, req tenant.ProvisionRequest) (tenant.ProvisionResult, error) {
	if err := req.Validate(); err != nil {
		return tenant.ProvisionResult{}, err
	}

	existing, err := p.userRepo.GetByEmail(ctx, strings.TrimSpace(req.AdminEmail))
	switch {
	case err == nil:
		slog.InfoContext(ctx, "administrator already provisioned", "tenant_id", existing.TenantID)
		return tenant.ProvisionResult{TenantID: existing.TenantID, AdminUserID: existing.ID}, nil
	case !errors.Is(err, user.ErrUserNotFound):
		return tenant.ProvisionResult{}, fmt.Errorf("failed to look up administrator: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), p.hashCost)
	if err != nil {
		return tenant.ProvisionResult{}, fmt.Errorf("hash admin password: %w", err)
	}

	var result tenant.ProvisionResult
	err = p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := p.tenantRepo.GetByName(ctx, req.TenantName)
		if errors.Is(err, tenant.ErrTenantNotFound) {
			t, err = p.tenantRepo.Create(ctx, tenant.Tenant{Name: strings.TrimSpace(req.TenantName)})
		}
		if err != nil {
			return fmt.Errorf("failed to resolve tenant: %w", err)
		}

		admin, err := p.userRepo.Create(ctx, user.User{
			TenantID:     t.ID,
			Name:         strings.TrimSpace(req.AdminName),
			Email:        strings.TrimSpace(req.AdminEmail),
			PasswordHash: string(passwordHash),
			Role:         user.RoleAdmin,
			Status:       user.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}

		// Admins clock in like everyone else, so they get a profile too.
		if _, err := p.employeeRepo.Create(ctx, employee.Employee{
			TenantID:   t.ID,
			UserID:     admin.ID,
			NIK:        "ADMIN-001",
			Position:   "Administrator",
			Department: "Management",
			JoinDate:   p.now().UTC().Truncate(24 * time.Hour),
		}); err != nil {
			return fmt.Errorf("failed to create administrator profile: %w", err)
		}

		result = tenant.ProvisionResult{TenantID: t.ID, AdminUserID: admin.ID, Created: true}
		return nil
	})
	if err != nil {
		return tenant.ProvisionResult{}, err
	}

	slog.InfoContext(ctx, "tenant provisioned", "tenant_id", result.TenantID)
	return result, nil
}
