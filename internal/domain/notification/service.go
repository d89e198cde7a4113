package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Create stores a notification and pushes it to live subscribers.
	Create(ctx context.Context, req CreateNotificationRequest) error

	// Caller-scoped operations
	GetNotifications(ctx context.Context, req ListNotificationsRequest) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error

	// SSE subscription
	Subscribe(ctx context.Context, tenantID, userID string) (<-chan SSEEvent, func())
}
