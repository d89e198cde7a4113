package user

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, u User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetResetCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, userID string) error
	// ClearExpiredResetCodes wipes reset codes whose expiry is before now and
	// returns how many rows changed.
	ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error)
	UpdateStatus(ctx context.Context, userID string, status Status) error
}
