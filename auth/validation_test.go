package auth_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-session-server/auth"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateEmail(t *testing.T) {
	v := auth.NewValidator()

	for _, email := range []string{"alice@example.com", "a.b+tag@sub.example.org"} {
		require.NoError(t, v.ValidateEmail("test", email), email)
	}
	for _, email := range []string{"", "alice", "alice@", "Alice <alice@example.com>", "alice@localhost", strings.Repeat("a", 250) + "@example.com"} {
		require.ErrorIs(t, v.ValidateEmail("test", email), apperrors.ErrValidation, email)
	}
}

func TestValidator_ValidatePassword(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidatePassword("test", "pw123"))
	require.NoError(t, v.ValidatePassword("test", strings.Repeat("x", 72)))

	err := v.ValidatePassword("test", strings.Repeat("x", 73))
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, _, msg := apperrors.Public(err)
	require.Equal(t, "password must be at most 72 bytes", msg)

	require.ErrorIs(t, v.ValidatePassword("test", ""), apperrors.ErrValidation)
}

func TestValidator_ValidateLogin(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateLogin("alice@example.com", "anything"))
	require.ErrorIs(t, v.ValidateLogin("alice@example.com", ""), apperrors.ErrValidation)
	require.ErrorIs(t, v.ValidateLogin("nope", "pw"), apperrors.ErrValidation)
}
