package users

import (
	"slices"
	"strings"
	"time"
)

// RoleType is a role tag carried by a principal and embedded in its access tokens
type RoleType string

const (
	RoleUser      RoleType = "user"       // Baseline role given at registration
	RoleAdmin     RoleType = "admin"      // Administrative access
	RoleSuperUser RoleType = "super-user" // Unrestricted access
)

// DefaultRoles returns the role set assigned to newly registered principals
func DefaultRoles() []RoleType {
	return []RoleType{RoleUser}
}

// User is the principal record held by the credential store
type User struct {
	ID           string     `json:"id,omitempty"`    // Unique identifier, assigned by the store at creation
	Email        string     `json:"email,omitempty"` // Login key, unique and normalised
	PasswordHash string     `json:"-"`               // Hashed password - never serialize
	FullName     string     `json:"fullName,omitempty"`
	Roles        []RoleType `json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
}

// Public is the projection of a user that may leave the service
type Public struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"fullName"`
	Roles    []RoleType `json:"roles"`
}

// Public returns the externally visible fields of the user
func (u *User) Public() *Public {
	return &Public{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Roles:    slices.Clone(u.Roles),
	}
}

// HasRole reports whether the user carries the role
func (u *User) HasRole(role RoleType) bool {
	return slices.Contains(u.Roles, role)
}

// RoleStrings returns the roles as plain strings for token claims
func (u *User) RoleStrings() []string {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return roles
}

// RolesFromStrings converts claim values back into role types
func RolesFromStrings(values []string) []RoleType {
	roles := make([]RoleType, 0, len(values))
	for _, v := range values {
		roles = append(roles, RoleType(v))
	}
	return roles
}

// Clone returns a deep copy so stores never hand out shared state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// NormaliseEmail applies the case-insensitive email policy
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
