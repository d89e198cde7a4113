package auth

import "errors"

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token has expired")
	ErrTooManyAttempts         = errors.New("too many login attempts")
	ErrInvalidResetRequest     = errors.New("invalid or expired reset request")
	ErrResetCodeExpired        = errors.New("reset code has expired")
	ErrInvalidResetCode        = errors.New("invalid reset code")
	ErrCurrentPasswordMismatch = errors.New("current password is incorrect")
)

// RateLimitError carries how long the caller must wait before retrying.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return ErrTooManyAttempts.Error()
}

func (e *RateLimitError) Unwrap() error {
	return ErrTooManyAttempts
}
