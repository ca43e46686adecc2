package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-server/auth"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPrincipal stores the authenticated *users.User
	ContextKeyPrincipal ContextKey = "principal"
)

// PrincipalFromContext returns the principal RequireAuth attached to the request, if any
func PrincipalFromContext(ctx context.Context) (*users.User, bool) {
	principal, ok := ctx.Value(ContextKeyPrincipal).(*users.User)
	return principal, ok && principal != nil
}

// RequireAuth is middleware that validates an access token taken from the
// Authorization bearer header or, failing that, the access token cookie.
// The principal is reloaded from the store so a deleted account is rejected.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := accessTokenFromRequest(r)
			if raw == "" {
				writeError(w, apperrors.Unauthorized("RequireAuth", "access token not found", nil))
				return
			}

			principal, err := s.auth.Authenticate(r.Context(), raw)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRoles lets the request through when the authenticated principal holds
// one of the roles. It must run after RequireAuth.
func (s *Server) RequireRoles(required ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, apperrors.Unauthorized("RequireRoles", "access token not found", nil))
				return
			}
			if err := auth.RequireRoles(principal, required...); err != nil {
				writeError(w, err)
				return
			}
			next(w, r)
		}
	}
}

func accessTokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(CookieAccessToken); err == nil {
		return cookie.Value
	}
	return ""
}
