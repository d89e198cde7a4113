package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"

	// SSE tokens are short-lived (5 minutes)
	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(userID, tenantID, email string, role user.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID, tenantID string) (token string, expiresAt int64, err error)
	// ValidateRefreshToken returns auth.ErrTokenExpired or auth.ErrInvalidToken
	// on failure.
	ValidateRefreshToken(tokenString string) (userID, tenantID string, err error)
	GenerateSSEToken(userID, tenantID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID, tenantID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type Option func(*JWTService)

// WithNow overrides the clock used to stamp expirations.
func WithNow(now func() time.Time) Option {
	return func(j *JWTService) {
		j.now = now
	}
}

type JWTService struct {
	accessTokenExpiration  time.Duration
	refreshTokenExpiration time.Duration
	tokenAuth              *jwtauth.JWTAuth
	now                    func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses the expiration durations up front so a bad value
// fails at startup rather than at first login.
func NewJWTService(secretKey, accessTokenExpirationTime, refreshTokenExpirationTime string, opts ...Option) (*JWTService, error) {
	accessExp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	refreshExp, err := time.ParseDuration(refreshTokenExpirationTime)
	if err != nil {
		return nil, err
	}

	j := &JWTService{
		accessTokenExpiration:  accessExp,
		refreshTokenExpiration: refreshExp,
		tokenAuth:              jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *JWTService) GenerateAccessToken(userID, tenantID, email string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":   userID,
		"tenant_id": tenantID,
		"email":     email,
		"role":      string(role),
		"type":      TokenTypeAccess,
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID, tenantID string) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.refreshTokenExpiration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":   userID,
		"tenant_id": tenantID,
		"exp":       expiresAt,
		"type":      TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ValidateRefreshToken(tokenString string) (userID, tenantID string, err error) {
	return j.validateTyped(tokenString, TokenTypeRefresh)
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID, tenantID string) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":   userID,
		"tenant_id": tenantID,
		"type":      TokenTypeSSE,
		"exp":       expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (userID, tenantID string, err error) {
	return j.validateTyped(tokenString, TokenTypeSSE)
}

func (j *JWTService) validateTyped(tokenString, wantType string) (userID, tenantID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", "", ClassifyError(err)
	}

	// Check token type
	tokenType, ok := token.Get("type")
	if !ok || tokenType != wantType {
		return "", "", auth.ErrInvalidToken
	}

	userID, ok = stringClaim(token, "user_id")
	if !ok {
		return "", "", auth.ErrInvalidToken
	}
	tenantID, ok = stringClaim(token, "tenant_id")
	if !ok {
		return "", "", auth.ErrInvalidToken
	}
	return userID, tenantID, nil
}

// IdentityFromClaims builds the caller identity from a verified access token's
// claims.
func IdentityFromClaims(claims map[string]interface{}) (auth.Identity, error) {
	if t, _ := claims["type"].(string); t != TokenTypeAccess {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	tenantID, _ := claims["tenant_id"].(string)
	role, _ := claims["role"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || tenantID == "" || !user.Role(role).IsValid() {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{
		UserID:   userID,
		TenantID: tenantID,
		Role:     user.Role(role),
		Email:    email,
	}, nil
}

// ClassifyError maps a jwtauth/jwx verification error onto the auth domain
// errors so expired tokens can be told apart from bad ones.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jwtauth.ErrExpired) || errors.Is(err, jwt.ErrTokenExpired()) {
		return auth.ErrTokenExpired
	}
	return auth.ErrInvalidToken
}

func stringClaim(token jwt.Token, key string) (string, bool) {
	v, ok := token.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
