package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, tenant_id, name, email, password_hash, role, status,
		reset_code_hash, reset_code_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.ResetCodeHash,
		&u.ResetCodeExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (tenant_id, name, email, password_hash, role, status)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.TenantID,
		newUser.Name,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Role,
		newUser.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email))
}

// Update implements user.UserRepository. Only profile fields are written.
func (r *userRepositoryImpl) Update(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = $1, email = LOWER($2), role = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := q.Exec(ctx, query, u.Name, u.Email, u.Role, u.Status, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetResetCode implements user.UserRepository.
func (r *userRepositoryImpl) SetResetCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET reset_code_hash = $1, reset_code_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := q.Exec(ctx, query, codeHash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ClearResetCode implements user.UserRepository.
func (r *userRepositoryImpl) ClearResetCode(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE users
		SET reset_code_hash = NULL, reset_code_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear reset code: %w", err)
	}
	return nil
}

// ClearExpiredResetCodes implements user.UserRepository.
func (r *userRepositoryImpl) ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE users
		SET reset_code_hash = NULL, reset_code_expires_at = NULL
		WHERE reset_code_expires_at IS NOT NULL AND reset_code_expires_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus implements user.UserRepository.
func (r *userRepositoryImpl) UpdateStatus(ctx context.Context, userID string, status user.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, status, userID)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
