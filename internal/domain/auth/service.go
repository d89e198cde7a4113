package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (TokenResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (ResetCodeResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	// ClearExpiredResetCodes is run by the scheduler.
	ClearExpiredResetCodes(ctx context.Context) error
}
