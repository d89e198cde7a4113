package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrProfileNotFound      = errors.New("employee profile not found, please contact HR")
	ErrEmailExists          = errors.New("email already exists")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
)
