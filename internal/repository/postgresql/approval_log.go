package postgresql

import (
	"context"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
)

type approvalLogRepository struct {
	db *database.DB
}

func NewApprovalLogRepository(db *database.DB) approval.Repository {
	return &approvalLogRepository{db: db}
}

func (r *approvalLogRepository) Create(ctx context.Context, entry *approval.LogEntry) error {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO approvals_log (tenant_id, entity_type, entity_id, action, performed_by, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, entry.TenantID, entry.EntityType, entry.EntityID, entry.Action, entry.PerformedBy, entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write approval log: %w", err)
	}
	return nil
}

func (r *approvalLogRepository) ListByEntity(ctx context.Context, tenantID string, entityType approval.EntityType, entityID string) ([]approval.LogEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, tenant_id, entity_type, entity_id, action, performed_by, comment, created_at
		FROM approvals_log
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at ASC
	`, tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval log: %w", err)
	}
	defer rows.Close()

	entries := []approval.LogEntry{}
	for rows.Next() {
		var e approval.LogEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.EntityType, &e.EntityID, &e.Action, &e.PerformedBy, &e.Comment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
