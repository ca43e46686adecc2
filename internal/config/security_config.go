package config

import (
	"errors"
	"fmt"
)

// MinSecretLength is the minimum HMAC signing secret size in bytes
const MinSecretLength = 32

var (
	ErrSecretMissing  = errors.New("JWT_SECRET is not set")
	ErrSecretTooShort = fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
)

type SecurityConfig interface {
	GetJWTSecret() string
	GetJWTIssuer() string
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Security) GetJWTIssuer() string {
	return GetEnv("JWT_ISSUER", "go-session-server")
}

// GetSecureCookies is enabled everywhere except local development
func (Security) GetSecureCookies() bool {
	return !EnvVars{}.IsDev()
}

// Validate checks the settings the server refuses to start without
func Validate(c Config) error {
	return ValidateSecret(c.GetJWTSecret())
}

func ValidateSecret(secret string) error {
	if secret == "" {
		return ErrSecretMissing
	}
	if len(secret) < MinSecretLength {
		return ErrSecretTooShort
	}
	return nil
}
