package auth

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/users"
)

// Authorize reports whether the principal holds at least one of the required roles.
// An empty required set authorises nobody.
func Authorize(principal *users.User, required ...users.RoleType) bool {
	if principal == nil {
		return false
	}
	for _, role := range required {
		if principal.HasRole(role) {
			return true
		}
	}
	return false
}

// RequireRoles is Authorize as an error: a ForbiddenError when the role sets do not intersect
func RequireRoles(principal *users.User, required ...users.RoleType) error {
	if Authorize(principal, required...) {
		return nil
	}
	var id string
	if principal != nil {
		id = principal.ID
	}
	return apperrors.Forbidden("RequireRoles", "",
		fmt.Errorf("principal %q holds none of %v", id, required))
}
