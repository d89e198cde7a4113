package memory

import (
	"context"
	"strings"
	"time"

	"github.com/hrlite/hr-backend-go/internal/domain/user"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) emailTakenLocked(email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(_ context.Context, newUser user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTakenLocked(newUser.Email, "") {
		return user.User{}, user.ErrUserEmailExists
	}
	newUser.ID = newID()
	newUser.Email = strings.ToLower(newUser.Email)
	newUser.CreatedAt = r.s.stamp()
	newUser.UpdatedAt = newUser.CreatedAt
	r.s.users[newUser.ID] = newUser
	return newUser, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) Update(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return user.ErrUserEmailExists
	}
	existing.Name = u.Name
	existing.Email = strings.ToLower(u.Email)
	existing.Role = u.Role
	existing.Status = u.Status
	existing.UpdatedAt = r.s.stamp()
	r.s.users[u.ID] = existing
	return nil
}

func (r *userRepository) modify(id string, fn func(u *user.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = r.s.stamp()
	r.s.users[id] = u
	return nil
}

func (r *userRepository) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	return r.modify(userID, func(u *user.User) { u.PasswordHash = passwordHash })
}

func (r *userRepository) SetResetCode(_ context.Context, userID, codeHash string, expiresAt time.Time) error {
	return r.modify(userID, func(u *user.User) {
		u.ResetCodeHash = &codeHash
		u.ResetCodeExpiresAt = &expiresAt
	})
}

func (r *userRepository) ClearResetCode(_ context.Context, userID string) error {
	return r.modify(userID, func(u *user.User) {
		u.ResetCodeHash = nil
		u.ResetCodeExpiresAt = nil
	})
}

func (r *userRepository) ClearExpiredResetCodes(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var cleared int64
	for id, u := range r.s.users {
		if u.ResetCodeExpiresAt != nil && u.ResetCodeExpiresAt.Before(now) {
			u.ResetCodeHash = nil
			u.ResetCodeExpiresAt = nil
			r.s.users[id] = u
			cleared++
		}
	}
	return cleared, nil
}

func (r *userRepository) UpdateStatus(_ context.Context, userID string, status user.Status) error {
	return r.modify(userID, func(u *user.User) { u.Status = status })
}
