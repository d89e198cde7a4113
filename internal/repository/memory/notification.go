package memory

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/notification"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(_ context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.stamp()
	}
	stored := *n
	r.s.notifications = append(r.s.notifications, &stored)
	return nil
}

// GetByUserID walks the log backwards so the newest notification comes first.
func (r *notificationRepository) GetByUserID(_ context.Context, tenantID, userID string, pageNum, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*notification.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.TenantID != tenantID || n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		cp := *n
		matched = append(matched, &cp)
	}

	return page(matched, (pageNum-1)*pageSize, pageSize), len(matched), nil
}

func (r *notificationRepository) GetUnreadCount(_ context.Context, tenantID, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, n := range r.s.notifications {
		if n.TenantID == tenantID && n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(_ context.Context, tenantID, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.ID == id && n.TenantID == tenantID && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}

func (r *notificationRepository) MarkAllAsRead(_ context.Context, tenantID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.notifications {
		if n.TenantID == tenantID && n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}
