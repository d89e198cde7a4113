package memory

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/tenant"
)

type tenantRepository struct {
	s *Store
}

func (r *tenantRepository) Create(_ context.Context, newTenant tenant.Tenant) (tenant.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	newTenant.ID = newID()
	newTenant.CreatedAt = r.s.stamp()
	r.s.tenants[newTenant.ID] = newTenant
	return newTenant, nil
}

func (r *tenantRepository) GetByID(_ context.Context, id string) (tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tenants[id]
	if !ok {
		return tenant.Tenant{}, tenant.ErrTenantNotFound
	}
	return t, nil
}

func (r *tenantRepository) GetByName(_ context.Context, name string) (tenant.Tenant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found tenant.Tenant
	for _, t := range r.s.tenants {
		if t.Name != name {
			continue
		}
		if found.ID == "" || t.CreatedAt.Before(found.CreatedAt) {
			found = t
		}
	}
	if found.ID == "" {
		return tenant.Tenant{}, tenant.ErrTenantNotFound
	}
	return found, nil
}
