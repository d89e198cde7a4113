package errorlog

import (
	"context"
	"testing"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/errorlog"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLogService_ListRecent_ScopedToCallerTenant(t *testing.T) {
	svc := NewErrorLogService(memory.NewStore().ErrorLog())
	t1, t2 := "t1", "t2"

	svc.Record(context.Background(), errorlog.Record{TenantID: &t1, Route: "POST /api/t1/leave", Message: "boom"})
	svc.Record(context.Background(), errorlog.Record{TenantID: &t2, Route: "POST /api/t2/leave", Message: "other"})
	svc.Record(context.Background(), errorlog.Record{Route: "POST /api/auth/login", Message: "no tenant"})

	ctx := auth.ContextWithIdentity(context.Background(), auth.Identity{UserID: "admin", TenantID: t1, Role: user.RoleAdmin})
	records, err := svc.ListRecent(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "boom", records[0].Message)
	assert.Equal(t, "POST /api/t1/leave", records[0].Route)
}

func TestErrorLogService_ListRecent_RequiresIdentity(t *testing.T) {
	svc := NewErrorLogService(memory.NewStore().ErrorLog())

	_, err := svc.ListRecent(context.Background())
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}
