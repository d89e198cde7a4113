package approval

import (
	"context"
	"log/slog"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
)

type ApprovalServiceImpl struct {
	repo          approval.Repository
	notifications notification.Service
}

func NewApprovalService(repo approval.Repository, notifications notification.Service) approval.Service {
	return &ApprovalServiceImpl{
		repo:          repo,
		notifications: notifications,
	}
}

// LogApproval implements approval.Service.
func (s *ApprovalServiceImpl) LogApproval(ctx context.Context, entry approval.LogEntry) {
	if err := s.repo.Create(ctx, &entry); err != nil {
		slog.ErrorContext(ctx, "failed to log approval",
			"tenant_id", entry.TenantID,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"error", err,
		)
	}
}

// Notify implements approval.Service.
func (s *ApprovalServiceImpl) Notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if err := s.notifications.Create(ctx, req); err != nil {
		slog.ErrorContext(ctx, "failed to create notification",
			"tenant_id", req.TenantID,
			"user_id", req.UserID,
			"type", req.Type,
			"error", err,
		)
	}
}
