package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Data == nil {
		n.Data = map[string]interface{}{}
	}

	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (id, tenant_id, user_id, type, message, data_json, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.Exec(ctx, query,
		n.ID,
		n.TenantID,
		n.UserID,
		string(n.Type),
		n.Message,
		dataJSON,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByUserID returns one page of a user's notifications, newest first, and
// the total matching count.
func (r *notificationRepository) GetByUserID(ctx context.Context, tenantID, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	where := "tenant_id = $1 AND user_id = $2"
	if unreadOnly {
		where += " AND read = FALSE"
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+where, tenantID, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`
		SELECT id, tenant_id, user_id, type, message, data_json, read, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, where)

	rows, err := q.Query(ctx, query, tenantID, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		var dataJSON []byte
		if err := rows.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Type, &n.Message, &dataJSON, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND read = FALSE
	`, tenantID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one notification of the user as read.
func (r *notificationRepository) MarkAsRead(ctx context.Context, tenantID, userID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3
	`, tenantID, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all notifications of the user as read
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, tenantID, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE tenant_id = $1 AND user_id = $2 AND read = FALSE
	`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}
