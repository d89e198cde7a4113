package approval

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/notification"
)

// Service records workflow side effects. Both methods are best-effort: a
// failure is logged and never returned, so a business transition is not
// undone by an unavailable audit sink.
type Service interface {
	LogApproval(ctx context.Context, entry LogEntry)
	Notify(ctx context.Context, req notification.CreateNotificationRequest)
}
