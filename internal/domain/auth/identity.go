package auth

import (
	"context"

	"github.com/hrlite/hr-backend-go/internal/domain/user"
)

// Identity is the caller resolved from a verified access token.
type Identity struct {
	UserID   string
	TenantID string
	Role     user.Role
	Email    string
}

func (i Identity) IsEmployee() bool {
	return i.Role == user.RoleEmployee
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns ErrUnauthenticated when no identity is attached.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" || id.TenantID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
