package errorlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
)

type ErrorLogServiceImpl struct {
	repo errorlog.Repository
}

func NewErrorLogService(repo errorlog.Repository) errorlog.Service {
	return &ErrorLogServiceImpl{repo: repo}
}

// Record implements errorlog.Service. A failure to persist is only logged.
func (s *ErrorLogServiceImpl) Record(ctx context.Context, r errorlog.Record) {
	if err := s.repo.Create(ctx, &r); err != nil {
		slog.ErrorContext(ctx, "failed to persist error record",
			"route", r.Route,
			"original_error", r.Message,
			"error", err,
		)
	}
}

// ListRecent implements errorlog.Service.
func (s *ErrorLogServiceImpl) ListRecent(ctx context.Context) ([]errorlog.RecordResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListRecent(ctx, id.TenantID, errorlog.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list error records: %w", err)
	}

	out := make([]errorlog.RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, errorlog.RecordResponse{
			ID:        r.ID,
			TenantID:  r.TenantID,
			Route:     r.Route,
			Message:   r.Message,
			Stack:     r.Stack,
			Payload:   r.Payload,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}
