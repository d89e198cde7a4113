package tenant

import "context"

type TenantRepository interface {
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetByName(ctx context.Context, name string) (Tenant, error)
	Create(ctx context.Context, newTenant Tenant) (Tenant, error)
}
