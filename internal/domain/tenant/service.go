package tenant

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

// ProvisionRequest describes a tenant and its first administrator.
type ProvisionRequest struct {
	TenantName    string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func (r *ProvisionRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("tenant_name", r.TenantName)
	errs.Required("admin_name", r.AdminName)
	if validator.IsEmpty(r.AdminEmail) {
		errs.Add("admin_email", "admin_email is required")
	} else if !validator.IsValidEmail(r.AdminEmail) {
		errs.Add("admin_email", "admin_email must be a valid email address")
	}
	if len(r.AdminPassword) < 6 {
		errs.Add("admin_password", "admin_password must be at least 6 characters")
	}

	return errs.Err()
}

type ProvisionResult struct {
	TenantID    string
	AdminUserID string
	// Created is false when the administrator already existed.
	Created bool
}

type Provisioner interface {
	// Provision creates the tenant and administrator unless the admin email
	// is already registered. Safe to run on every start.
	Provision(ctx context.Context, req ProvisionRequest) (ProvisionResult, error)
}
