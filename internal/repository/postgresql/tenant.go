package postgresql

import (
	"context"
	"errors"

	"github.com/hrlite/hr-backend-go/internal/domain/tenant"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type tenantRepositoryImpl struct {
	db *database.DB
}

func NewTenantRepository(db *database.DB) tenant.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func scanTenant(row pgx.Row) (tenant.Tenant, error) {
	var t tenant.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.ErrTenantNotFound
		}
		return tenant.Tenant{}, err
	}
	return t, nil
}

// Create implements tenant.TenantRepository.
func (r *tenantRepositoryImpl) Create(ctx context.Context, newTenant tenant.Tenant) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO tenants (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`
	return scanTenant(q.QueryRow(ctx, query, newTenant.Name))
}

// GetByID implements tenant.TenantRepository.
func (r *tenantRepositoryImpl) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, created_at
		FROM tenants
		WHERE id = $1
	`
	return scanTenant(q.QueryRow(ctx, query, id))
}

// GetByName implements tenant.TenantRepository. Names are not unique, the
// oldest match wins.
func (r *tenantRepositoryImpl) GetByName(ctx context.Context, name string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, created_at
		FROM tenants
		WHERE name = $1
		ORDER BY created_at
		LIMIT 1
	`
	return scanTenant(q.QueryRow(ctx, query, name))
}
