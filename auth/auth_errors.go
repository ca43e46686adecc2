package auth

import "errors"

// Internal failure causes. They travel as the Cause of a public error and
// show up in logs, audit events and tests, never in a response body.
var (
	ErrEmailNotFound        = errors.New("credentials not valid (email)")
	ErrPasswordMismatch     = errors.New("credentials not valid (password)")
	ErrPrincipalMissing     = errors.New("principal not found")
	ErrRefreshRecordMissing = errors.New("no refresh session for principal")
	ErrRefreshMismatch      = errors.New("refresh token is not the current one")
	ErrRefreshRecordExpired = errors.New("refresh session expired")
	ErrRefreshRaced         = errors.New("refresh session rotated concurrently")
)

// Public messages
const (
	MsgInvalidCredentials = "credentials not valid"
	MsgRefreshInvalid     = "refresh token invalid or expired"
	MsgAccessInvalid      = "access token invalid or expired"
	MsgRefreshConflict    = "refresh already in progress"
	MsgUserCreationFailed = "user creation failed"
	MsgUnavailable        = "service unavailable"
	MsgLogoutSuccessful   = "Logout successful"
)
