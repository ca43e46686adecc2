package auth

import (
	"net/mail"
	"strings"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
)

const maxEmailLength = 254

// Validator holds the input rules applied before any credential reaches the store or the hasher.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegistration checks a sign-up request. email must already be normalised.
func (v *Validator) ValidateRegistration(email, password, fullName string) error {
	const op = "ValidateRegistration"
	if err := v.ValidateEmail(op, email); err != nil {
		return err
	}
	if err := v.ValidatePassword(op, password); err != nil {
		return err
	}
	if strings.TrimSpace(fullName) == "" {
		return apperrors.Validation(op, "fullName is required", nil)
	}
	return nil
}

// ValidateLogin checks a login request. email must already be normalised.
func (v *Validator) ValidateLogin(email, password string) error {
	const op = "ValidateLogin"
	if err := v.ValidateEmail(op, email); err != nil {
		return err
	}
	if password == "" {
		return apperrors.Validation(op, "password is required", nil)
	}
	return nil
}

// ValidateEmail accepts a single bare address such as alice@example.com
func (v *Validator) ValidateEmail(op, email string) error {
	if email == "" {
		return apperrors.Validation(op, "email is required", nil)
	}
	if len(email) > maxEmailLength {
		return apperrors.Validation(op, "email is invalid", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return apperrors.Validation(op, "email is invalid", err)
	}
	return nil
}

// ValidatePassword enforces the bcrypt input limits
func (v *Validator) ValidatePassword(op, password string) error {
	if password == "" {
		return apperrors.Validation(op, "password is required", nil)
	}
	if len(password) > users.MaxPasswordLength {
		return apperrors.Validation(op, "password must be at most 72 bytes", users.ErrPasswordTooLong)
	}
	return nil
}
