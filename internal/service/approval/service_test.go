package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/hrlite/hr-backend-go/internal/domain/approval"
	"github.com/hrlite/hr-backend-go/internal/domain/notification"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Create(context.Context, *approval.LogEntry) error {
	return errors.New("database unavailable")
}

func (failingRepo) ListByEntity(context.Context, string, approval.EntityType, string) ([]approval.LogEntry, error) {
	return nil, nil
}

type failingNotifications struct {
	notification.Service
	calls int
}

func (f *failingNotifications) Create(context.Context, notification.CreateNotificationRequest) error {
	f.calls++
	return errors.New("database unavailable")
}

func TestApprovalService_LogApproval_Appends(t *testing.T) {
	store := memory.NewStore()
	svc := NewApprovalService(store.ApprovalLog(), nil)
	comment := "ok"

	svc.LogApproval(context.Background(), approval.LogEntry{
		TenantID:    "t1",
		EntityType:  approval.EntityLeaveRequest,
		EntityID:    "l1",
		Action:      approval.ActionApprove,
		PerformedBy: "m1",
		Comment:     &comment,
	})

	entries, err := store.ApprovalLog().ListByEntity(context.Background(), "t1", approval.EntityLeaveRequest, "l1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, approval.ActionApprove, entries[0].Action)
	assert.NotEmpty(t, entries[0].ID)
}

func TestApprovalService_FailuresAreSwallowed(t *testing.T) {
	notifications := &failingNotifications{}
	svc := NewApprovalService(failingRepo{}, notifications)

	assert.NotPanics(t, func() {
		svc.LogApproval(context.Background(), approval.LogEntry{TenantID: "t1", EntityID: "x", Action: approval.ActionReject})
		svc.Notify(context.Background(), notification.CreateNotificationRequest{TenantID: "t1", UserID: "u1"})
	})
	assert.Equal(t, 1, notifications.calls)
}
