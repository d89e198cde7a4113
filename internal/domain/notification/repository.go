package notification

import (
	"context"
)

// Repository defines the notification repository interface. Reads and
// updates are scoped to the owning tenant and user.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, tenantID, userID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)
	GetUnreadCount(ctx context.Context, tenantID, userID string) (int, error)
	// MarkAsRead returns ErrNotificationNotFound when no row of the user matched.
	MarkAsRead(ctx context.Context, tenantID, userID, id string) error
	MarkAllAsRead(ctx context.Context, tenantID, userID string) error
}
