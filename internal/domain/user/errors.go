package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrAccountInactive         = errors.New("account is not active")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
