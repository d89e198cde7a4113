package memory

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
)

type approvalRepository struct {
	s *Store
}

func (r *approvalRepository) Create(_ context.Context, entry *approval.LogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = newID()
	entry.CreatedAt = r.s.stamp()
	r.s.approvals = append(r.s.approvals, *entry)
	return nil
}

func (r *approvalRepository) ListByEntity(_ context.Context, tenantID string, entityType approval.EntityType, entityID string) ([]approval.LogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []approval.LogEntry{}
	for _, e := range r.s.approvals {
		if e.TenantID == tenantID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type errorLogRepository struct {
	s *Store
}

func (r *errorLogRepository) Create(_ context.Context, rec *errorlog.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec.ID = newID()
	rec.CreatedAt = r.s.stamp()
	r.s.errorRecords = append(r.s.errorRecords, *rec)
	return nil
}

func (r *errorLogRepository) ListRecent(_ context.Context, tenantID string, limit int) ([]errorlog.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []errorlog.Record{}
	for i := len(r.s.errorRecords) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.s.errorRecords[i]
		if rec.TenantID != nil && *rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	return out, nil
}
