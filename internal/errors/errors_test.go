package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/stretchr/testify/require"
)

var errCause = errors.New("credentials not valid (password)")

func TestError_UnwrapsKindAndCause(t *testing.T) {
	err := apperrors.Unauthorized("Login", "credentials not valid", errCause)

	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.ErrorIs(t, err, errCause)
	require.NotErrorIs(t, err, apperrors.ErrForbidden)
	require.Contains(t, err.Error(), "[Login]")
	require.Contains(t, err.Error(), "(password)")
}

func TestError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperrors.Conflict("Register", "user creation failed", nil))

	require.ErrorIs(t, err, apperrors.ErrConflict)

	var appErr *apperrors.Error
	require.True(t, apperrors.As(err, &appErr))
	require.Equal(t, "Register", appErr.Op)
}

func TestPublic_MappingTable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"validation", apperrors.Validation("Register", "email is invalid", nil), http.StatusBadRequest, "validation_error", "email is invalid"},
		{"unauthorized hides cause", apperrors.Unauthorized("Login", "credentials not valid", errCause), http.StatusUnauthorized, "unauthorized", "credentials not valid"},
		{"forbidden default message", apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "insufficient permissions"},
		{"conflict", apperrors.Conflict("RefreshSession", "", nil), http.StatusConflict, "conflict", "conflict"},
		{"unavailable", apperrors.Unavailable("Login", "service unavailable", errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "unavailable", "service unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind, msg := apperrors.Public(tt.err)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantKind, kind)
			require.Equal(t, tt.wantMsg, msg)
			require.NotContains(t, msg, "refused")
		})
	}
}

func TestWrapf(t *testing.T) {
	require.NoError(t, apperrors.Wrapf(nil, "op"))

	err := apperrors.Wrapf(apperrors.ErrNotFound, "FindByID %s", "abc")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, "FindByID abc: not found", err.Error())
}
