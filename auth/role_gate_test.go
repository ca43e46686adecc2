package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-session-server/auth"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	admin := &users.User{ID: "u-1", Roles: []users.RoleType{users.RoleUser, users.RoleAdmin}}
	plain := &users.User{ID: "u-2", Roles: []users.RoleType{users.RoleUser}}

	tests := []struct {
		name      string
		principal *users.User
		required  []users.RoleType
		want      bool
	}{
		{"intersecting sets", admin, []users.RoleType{users.RoleSuperUser, users.RoleAdmin}, true},
		{"disjoint sets", plain, []users.RoleType{users.RoleSuperUser, users.RoleAdmin}, false},
		{"single match", plain, []users.RoleType{users.RoleUser}, true},
		{"empty requirement authorises nobody", admin, nil, false},
		{"nil principal", nil, []users.RoleType{users.RoleUser}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, auth.Authorize(tt.principal, tt.required...))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	plain := &users.User{ID: "u-2", Roles: []users.RoleType{users.RoleUser}}

	require.NoError(t, auth.RequireRoles(plain, users.RoleUser))

	err := auth.RequireRoles(plain, users.RoleAdmin, users.RoleSuperUser)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	status, _, msg := apperrors.Public(err)
	require.Equal(t, 403, status)
	require.Equal(t, "insufficient permissions", msg)
}
