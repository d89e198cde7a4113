package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/pkg/pagination"
	"github.com/hrlite/hr-backend-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	EventNotification = "notification"
)

type service struct {
	repo notification.Repository
	hub  *sse.Hub
}

func NewNotificationService(repo notification.Repository, hub *sse.Hub) notification.Service {
	return &service{
		repo: repo,
		hub:  hub,
	}
}

// Create stores the notification and, once stored, pushes it to the
// recipient's open streams.
func (s *service) Create(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := &notification.Notification{
		ID:       uuid.New().String(),
		TenantID: req.TenantID,
		UserID:   req.UserID,
		Type:     req.Type,
		Message:  req.Message,
		Data:     req.Data,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.hub.Publish(sse.Event{
		TenantID: n.TenantID,
		UserID:   n.UserID,
		Event:    EventNotification,
		Data:     toResponse(n),
	})
	return nil
}

// toResponse converts a Notification entity to NotificationResponse
func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications retrieves the caller's notifications, unread only unless
// asked otherwise.
func (s *service) GetNotifications(ctx context.Context, req notification.ListNotificationsRequest) (*notification.NotificationListResponse, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	if maxPage := pagination.MaxPage(pageSize); page > maxPage {
		page = maxPage
	}
	unreadOnly := req.Unread == nil || *req.Unread

	var (
		notifications []*notification.Notification
		total         int
		unreadCount   int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		notifications, total, err = s.repo.GetByUserID(gCtx, id.TenantID, id.UserID, page, pageSize, unreadOnly)
		return err
	})
	g.Go(func() error {
		var err error
		unreadCount, err = s.repo.GetUnreadCount(gCtx, id.TenantID, id.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context) (int, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.GetUnreadCount(ctx, id.TenantID, id.UserID)
}

// MarkAsRead marks one of the caller's notifications as read.
func (s *service) MarkAsRead(ctx context.Context, notificationID string) error {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, id.TenantID, id.UserID, notificationID)
}

// MarkAllAsRead marks all notifications as read for the caller.
func (s *service) MarkAllAsRead(ctx context.Context) error {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkAllAsRead(ctx, id.TenantID, id.UserID)
}

// Subscribe creates an SSE subscription for a user. The returned channel is
// closed when ctx ends or cleanup runs.
func (s *service) Subscribe(ctx context.Context, tenantID, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(tenantID, userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
