package postgresql

import (
	"context"
	"fmt"

	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
)

type errorLogRepository struct {
	db *database.DB
}

func NewErrorLogRepository(db *database.DB) errorlog.Repository {
	return &errorLogRepository{db: db}
}

func (r *errorLogRepository) Create(ctx context.Context, rec *errorlog.Record) error {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO errors (tenant_id, route, error_message, stack_trace, payload_json)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rec.TenantID, rec.Route, rec.Message, rec.Stack, rec.Payload).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write error record: %w", err)
	}
	return nil
}

func (r *errorLogRepository) ListRecent(ctx context.Context, tenantID string, limit int) ([]errorlog.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, tenant_id, route, error_message, stack_trace, payload_json, created_at
		FROM errors
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list error records: %w", err)
	}
	defer rows.Close()

	records := []errorlog.Record{}
	for rows.Next() {
		var rec errorlog.Record
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Route, &rec.Message, &rec.Stack, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan error record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
