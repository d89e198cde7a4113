package auth

import (
	"github.com/hrlite/hr-backend-go/internal/pkg/validator"
)

const MinPasswordLength = 6

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Password == "" {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshTokenRequest) Validate() error {
	if validator.IsEmpty(r.RefreshToken) {
		return validator.ValidationErrors{{Field: "refreshToken", Message: "refreshToken is required"}}
	}
	return nil
}

type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	AccessTokenExpiresAt  int64  `json:"accessTokenExpiresAt"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresAt int64  `json:"refreshTokenExpiresAt"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	if validator.IsEmpty(r.Email) {
		return validator.ValidationErrors{{Field: "email", Message: "email is required"}}
	}
	return nil
}

// ResetCodeResponse hands the code back to the caller because codes are not
// delivered out of band.
type ResetCodeResponse struct {
	ResetCode string `json:"resetCode"`
	ExpiresIn string `json:"expiresIn"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	}
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	}
	if r.NewPassword == "" {
		errs = append(errs, validator.ValidationError{Field: "newPassword", Message: "newPassword is required"})
	} else if len(r.NewPassword) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{Field: "newPassword", Message: "password must be at least 6 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CurrentPassword == "" {
		errs = append(errs, validator.ValidationError{Field: "currentPassword", Message: "currentPassword is required"})
	}
	if r.NewPassword == "" {
		errs = append(errs, validator.ValidationError{Field: "newPassword", Message: "newPassword is required"})
	} else if len(r.NewPassword) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{Field: "newPassword", Message: "password must be at least 6 characters"})
	}
	if r.ConfirmPassword == "" {
		errs = append(errs, validator.ValidationError{Field: "confirmPassword", Message: "confirmPassword is required"})
	} else if r.NewPassword != r.ConfirmPassword {
		errs = append(errs, validator.ValidationError{Field: "confirmPassword", Message: "new passwords do not match"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
