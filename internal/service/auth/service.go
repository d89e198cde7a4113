package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/hrlite/hr-backend-go/internal/pkg/jwt"
	"github.com/hrlite/hr-backend-go/internal/pkg/ratelimit"
	"golang.org/x/crypto/bcrypt"
)

const DefaultResetCodeTTL = 15 * time.Minute

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	jwt.Service
	limiter *ratelimit.Limiter

	resetCodeTTL time.Duration
	hashCost     int
	now          func() time.Time
}

type Option func(*AuthServiceImpl)

func WithResetCodeTTL(ttl time.Duration) Option {
	return func(a *AuthServiceImpl) { a.resetCodeTTL = ttl }
}

// WithHashCost lowers the bcrypt cost, for tests.
func WithHashCost(cost int) Option {
	return func(a *AuthServiceImpl) { a.hashCost = cost }
}

func WithNow(now func() time.Time) Option {
	return func(a *AuthServiceImpl) { a.now = now }
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, jwtService jwt.Service, limiter *ratelimit.Limiter, opts ...Option) auth.AuthService {
	a := &AuthServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		Service:        jwtService,
		limiter:        limiter,
		resetCodeTTL:   DefaultResetCodeTTL,
		hashCost:       bcrypt.DefaultCost,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AuthServiceImpl) hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), a.hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func limiterKey(email string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(email))
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	key := limiterKey(req.Email)

	remaining, blocked, err := a.limiter.Blocked(ctx, key)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("check login limiter: %w", err)
	}
	if blocked {
		return auth.TokenResponse{}, &auth.RateLimitError{RetryAfterSeconds: int(math.Ceil(remaining.Seconds()))}
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, a.failLogin(ctx, key)
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, a.failLogin(ctx, key)
	}

	if !userData.IsActive() {
		return auth.TokenResponse{}, user.ErrAccountInactive
	}

	if err := a.limiter.Reset(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to reset login limiter", "error", err)
	}

	return a.issueTokens(userData)
}

func (a *AuthServiceImpl) failLogin(ctx context.Context, key string) error {
	if _, err := a.limiter.RecordFailure(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to record login failure", "error", err)
	}
	return auth.ErrInvalidCredentials
}

func (a *AuthServiceImpl) issueTokens(u user.User) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresAt, err = a.Service.GenerateAccessToken(u.ID, u.TenantID, u.Email, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresAt, err = a.Service.GenerateRefreshToken(u.ID, u.TenantID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate refresh token: %w", err)
	}
	return resp, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.TokenResponse, error) {
	userID, tenantID, err := a.Service.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidToken
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if userData.TenantID != tenantID {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	if !userData.IsActive() {
		return auth.TokenResponse{}, user.ErrAccountInactive
	}

	return a.issueTokens(userData)
}

// ForgotPassword implements auth.AuthService. The plain code is returned to
// the caller since there is no delivery channel.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) (auth.ResetCodeResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		return auth.ResetCodeResponse{}, err
	}
	if !userData.IsActive() {
		return auth.ResetCodeResponse{}, user.ErrUserNotFound
	}

	code, err := generateResetCode()
	if err != nil {
		return auth.ResetCodeResponse{}, fmt.Errorf("generate reset code: %w", err)
	}
	codeHash, err := a.hashSecret(code)
	if err != nil {
		return auth.ResetCodeResponse{}, fmt.Errorf("hash reset code: %w", err)
	}

	if err := a.UserRepository.SetResetCode(ctx, userData.ID, codeHash, a.now().UTC().Add(a.resetCodeTTL)); err != nil {
		return auth.ResetCodeResponse{}, err
	}

	return auth.ResetCodeResponse{
		ResetCode: code,
		ExpiresIn: fmt.Sprintf("%d minutes", int(a.resetCodeTTL.Minutes())),
	}, nil
}

// ResetPassword implements auth.AuthService.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrInvalidResetRequest
		}
		return err
	}
	if !userData.IsActive() || userData.ResetCodeHash == nil || userData.ResetCodeExpiresAt == nil {
		return auth.ErrInvalidResetRequest
	}

	if a.now().After(*userData.ResetCodeExpiresAt) {
		if err := a.UserRepository.ClearResetCode(ctx, userData.ID); err != nil {
			slog.WarnContext(ctx, "failed to clear expired reset code", "user_id", userData.ID, "error", err)
		}
		return auth.ErrResetCodeExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*userData.ResetCodeHash), []byte(req.Code)); err != nil {
		return auth.ErrInvalidResetCode
	}

	passwordHash, err := a.hashSecret(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.UserRepository.UpdatePassword(ctx, userData.ID, passwordHash); err != nil {
			return err
		}
		return a.UserRepository.ClearResetCode(ctx, userData.ID)
	})
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByID(ctx, id.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrCurrentPasswordMismatch
	}

	passwordHash, err := a.hashSecret(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.UserRepository.UpdatePassword(ctx, userData.ID, passwordHash)
}

// ClearExpiredResetCodes implements auth.AuthService.
func (a *AuthServiceImpl) ClearExpiredResetCodes(ctx context.Context) error {
	cleared, err := a.UserRepository.ClearExpiredResetCodes(ctx, a.now().UTC())
	if err != nil {
		return err
	}
	if cleared > 0 {
		slog.InfoContext(ctx, "cleared expired reset codes", "count", cleared)
	}
	return nil
}

// generateResetCode returns a uniformly random 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
