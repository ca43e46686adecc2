// Package auth is the session authority: it authenticates principals by password,
// issues access and refresh tokens, rotates refresh tokens and revokes them on logout.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jrsteele09/go-session-server/audit"
	apperrors "github.com/jrsteele09/go-session-server/internal/errors"
	"github.com/jrsteele09/go-session-server/internal/metrics"
	"github.com/jrsteele09/go-session-server/sessions"
	"github.com/jrsteele09/go-session-server/token"
	"github.com/jrsteele09/go-session-server/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Repos holds all repository dependencies for the Authority
type Repos struct {
	Users    users.Repo    // Credential store
	Sessions sessions.Repo // Live refresh session per principal
}

// Result is what a session operation hands to the transport. Empty token
// fields mean "not issued"; ClearCredentials asks the transport to drop both.
type Result struct {
	User                  *users.Public
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	ClearCredentials      bool
	Message               string
}

// Authority implements Register, Login, CheckStatus, RefreshSession and Logout
type Authority struct {
	repos     Repos
	tokens    *token.Manager
	hasher    users.Hasher
	validator *Validator
	locks     *keyedMutex
	audit     audit.Publisher
	metrics   *metrics.Recorder
	nowFunc   func() time.Time
}

// AuthorityOption defines a function type to modify the Authority instance.
type AuthorityOption func(*Authority)

// WithNowFunc sets the clock used for session records (primarily for testing)
func WithNowFunc(nowFunc func() time.Time) AuthorityOption {
	return func(a *Authority) {
		a.nowFunc = nowFunc
	}
}

func WithHasher(hasher users.Hasher) AuthorityOption {
	return func(a *Authority) {
		a.hasher = hasher
	}
}

func WithAuditPublisher(publisher audit.Publisher) AuthorityOption {
	return func(a *Authority) {
		a.audit = publisher
	}
}

func WithRecorder(recorder *metrics.Recorder) AuthorityOption {
	return func(a *Authority) {
		a.metrics = recorder
	}
}

// NewAuthority initializes a new Authority with required dependencies.
func NewAuthority(repos Repos, tokens *token.Manager, options ...AuthorityOption) (*Authority, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthority] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewAuthority] Sessions repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAuthority] token manager is required")
	}

	a := &Authority{
		repos:     repos,
		tokens:    tokens,
		hasher:    users.NewBcryptHasher(bcrypt.DefaultCost),
		validator: NewValidator(),
		locks:     newKeyedMutex(),
		audit:     audit.NewLogPublisher(nil),
		nowFunc:   time.Now,
	}

	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// Register creates a principal with the default role and opens its first session.
// A duplicate email is a ConflictError.
func (a *Authority) Register(ctx context.Context, email, password, fullName string) (res *Result, err error) {
	const op = "Register"
	defer a.observe(op, time.Now(), &err)

	email = users.NormaliseEmail(email)
	fullName = strings.TrimSpace(fullName)
	if err := a.validator.ValidateRegistration(email, password, fullName); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, op, "", err)
	}

	now := a.nowFunc()
	created, err := a.repos.Users.Create(ctx, &users.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Roles:        users.DefaultRoles(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, users.ErrEmailExists) {
		a.publish(ctx, audit.NewEvent(audit.EventRegisterFailure, now).WithEmail(email).WithReason(err))
		return nil, apperrors.Conflict(op, MsgUserCreationFailed, err)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}

	// If the session write fails the principal stays behind, as a user that never logged in.
	res, err = a.openSession(ctx, op, created)
	if err != nil {
		return nil, err
	}
	a.publish(ctx, audit.NewEvent(audit.EventRegister, now).WithPrincipal(created.ID).WithEmail(email))
	return res, nil
}

// Provision creates a principal with explicit roles and no session, for seeding
// operators at startup. An existing email is reported as a ConflictError.
func (a *Authority) Provision(ctx context.Context, email, password, fullName string, roles ...users.RoleType) (*users.Public, error) {
	const op = "Provision"

	email = users.NormaliseEmail(email)
	fullName = strings.TrimSpace(fullName)
	if err := a.validator.ValidateRegistration(email, password, fullName); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = users.DefaultRoles()
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrInternal, op, "", err)
	}
	now := a.nowFunc()
	created, err := a.repos.Users.Create(ctx, &users.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, users.ErrEmailExists) {
		return nil, apperrors.Conflict(op, MsgUserCreationFailed, err)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	return created.Public(), nil
}

// Login authenticates by email and password and replaces any previous session.
// Unknown email and wrong password fail with the same public error.
func (a *Authority) Login(ctx context.Context, email, password string) (res *Result, err error) {
	const op = "Login"
	defer a.observe(op, time.Now(), &err)

	email = users.NormaliseEmail(email)
	if err := a.validator.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	user, err := a.repos.Users.FindByEmail(ctx, email, true)
	if errors.Is(err, users.ErrNotFound) {
		return nil, a.loginFailed(ctx, op, email, "", ErrEmailNotFound)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return nil, a.loginFailed(ctx, op, email, user.ID, ErrPasswordMismatch)
	}

	res, err = a.openSession(ctx, op, user)
	if err != nil {
		return nil, err
	}
	a.publish(ctx, audit.NewEvent(audit.EventLoginSuccess, a.nowFunc()).WithPrincipal(user.ID).WithEmail(email))
	return res, nil
}

// CheckStatus re-issues an access token for an already authenticated principal,
// carrying its current roles. The refresh session is left alone.
func (a *Authority) CheckStatus(_ context.Context, principal *users.User) (res *Result, err error) {
	const op = "CheckStatus"
	defer a.observe(op, time.Now(), &err)

	if principal == nil {
		return nil, apperrors.Unauthorized(op, MsgAccessInvalid, ErrPrincipalMissing)
	}

	access, accessExp, err := a.tokens.IssueAccess(principal.ID, principal.RoleStrings())
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	return &Result{
		User:                 principal.Public(),
		AccessToken:          access,
		AccessTokenExpiresAt: accessExp,
	}, nil
}

// RefreshSession exchanges the current refresh token for a new access token and a
// rotated refresh token. The presented token must be the one stored for its principal.
// Every rejection is the same UnauthorizedError; a lost race is a ConflictError.
func (a *Authority) RefreshSession(ctx context.Context, refreshToken string) (res *Result, err error) {
	const op = "RefreshSession"
	defer a.observe(op, time.Now(), &err)

	claims, err := a.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, a.refreshFailed(ctx, op, "", err)
	}
	principalID := claims.Subject

	unlock := a.locks.Lock(principalID)
	defer unlock()

	user, err := a.repos.Users.FindByID(ctx, principalID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, a.refreshFailed(ctx, op, principalID, ErrPrincipalMissing)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}

	current, err := a.repos.Sessions.Get(ctx, principalID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, a.refreshFailed(ctx, op, principalID, ErrRefreshRecordMissing)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	if !current.Matches(refreshToken) {
		return nil, a.refreshFailed(ctx, op, principalID, ErrRefreshMismatch)
	}
	now := a.nowFunc()
	if current.Expired(now) {
		return nil, a.refreshFailed(ctx, op, principalID, ErrRefreshRecordExpired)
	}

	res, next, err := a.mint(op, user, now)
	if err != nil {
		return nil, err
	}

	err = a.repos.Sessions.Swap(ctx, principalID, current.TokenHash, next)
	switch {
	case errors.Is(err, sessions.ErrStale):
		a.publish(ctx, audit.NewEvent(audit.EventRefreshFailure, now).WithPrincipal(principalID).WithReason(ErrRefreshRaced))
		return nil, apperrors.Conflict(op, MsgRefreshConflict, ErrRefreshRaced)
	case errors.Is(err, sessions.ErrNotFound):
		return nil, a.refreshFailed(ctx, op, principalID, ErrRefreshRecordMissing)
	case err != nil:
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}

	a.publish(ctx, audit.NewEvent(audit.EventRefreshSuccess, now).WithPrincipal(principalID))
	return res, nil
}

// Logout ends the session the refresh token belongs to, if it is still the current one.
// It never fails: bad tokens and store errors leave state unchanged and are only logged.
func (a *Authority) Logout(ctx context.Context, refreshToken string) *Result {
	const op = "Logout"
	started := time.Now()
	res := &Result{ClearCredentials: true, Message: MsgLogoutSuccessful}
	event := audit.NewEvent(audit.EventLogout, a.nowFunc())
	defer func() {
		a.publish(ctx, event)
		a.metrics.Observe(op, started, "")
	}()

	claims, err := a.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		log.Debug().Str("op", op).Err(err).Msg("logout with unusable refresh token")
		event.WithReason(err)
		return res
	}
	event.WithPrincipal(claims.Subject)

	unlock := a.locks.Lock(claims.Subject)
	defer unlock()

	err = a.repos.Sessions.Delete(ctx, claims.Subject, sessions.HashToken(refreshToken))
	switch {
	case err == nil:
		event.Type = audit.EventSessionRevoked
	case errors.Is(err, sessions.ErrStale), errors.Is(err, sessions.ErrNotFound):
		log.Debug().Str("op", op).Str("principal_id", claims.Subject).Err(err).Msg("logout with superseded refresh token")
		event.WithReason(err)
	default:
		log.Warn().Str("op", op).Str("principal_id", claims.Subject).Err(err).Msg("failed to clear refresh session")
		event.WithReason(err)
	}
	return res
}

// Authenticate resolves an access token to its principal, loaded fresh from the store
func (a *Authority) Authenticate(ctx context.Context, accessToken string) (*users.User, error) {
	const op = "Authenticate"

	claims, err := a.tokens.Verify(accessToken, token.TypeAccess)
	if err != nil {
		return nil, apperrors.Unauthorized(op, MsgAccessInvalid, err)
	}
	user, err := a.repos.Users.FindByID(ctx, claims.Subject)
	if errors.Is(err, users.ErrNotFound) {
		return nil, apperrors.Unauthorized(op, MsgAccessInvalid, ErrPrincipalMissing)
	}
	if err != nil {
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	return user, nil
}

// openSession mints both tokens and stores the refresh session, replacing any previous one.
// Tokens are only returned once the session is stored.
func (a *Authority) openSession(ctx context.Context, op string, user *users.User) (*Result, error) {
	unlock := a.locks.Lock(user.ID)
	defer unlock()

	res, record, err := a.mint(op, user, a.nowFunc())
	if err != nil {
		return nil, err
	}
	if err := a.repos.Sessions.Put(ctx, record); err != nil {
		log.Err(err).Str("op", op).Str("principal_id", user.ID).Msg("failed to store refresh session")
		return nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	return res, nil
}

func (a *Authority) mint(op string, user *users.User, now time.Time) (*Result, *sessions.Record, error) {
	access, accessExp, err := a.tokens.IssueAccess(user.ID, user.RoleStrings())
	if err != nil {
		return nil, nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	refresh, refreshExp, err := a.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, nil, apperrors.Unavailable(op, MsgUnavailable, err)
	}
	res := &Result{
		User:                  user.Public(),
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}
	return res, sessions.NewRecord(user.ID, refresh, now, refreshExp), nil
}

func (a *Authority) loginFailed(ctx context.Context, op, email, principalID string, cause error) error {
	log.Debug().Str("op", op).Str("principal_id", principalID).Err(cause).Msg("login rejected")
	a.publish(ctx, audit.NewEvent(audit.EventLoginFailure, a.nowFunc()).
		WithEmail(email).WithPrincipal(principalID).WithReason(cause))
	return apperrors.Unauthorized(op, MsgInvalidCredentials, cause)
}

func (a *Authority) refreshFailed(ctx context.Context, op, principalID string, cause error) error {
	log.Debug().Str("op", op).Str("principal_id", principalID).Err(cause).Msg("refresh rejected")
	a.publish(ctx, audit.NewEvent(audit.EventRefreshFailure, a.nowFunc()).
		WithPrincipal(principalID).WithReason(cause))
	return apperrors.Unauthorized(op, MsgRefreshInvalid, cause)
}

func (a *Authority) publish(ctx context.Context, event *audit.Event) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event", string(event.Type)).Msg("failed to publish audit event")
	}
}

func (a *Authority) observe(op string, started time.Time, errp *error) {
	var kind string
	if *errp != nil {
		_, kind, _ = apperrors.Public(*errp)
	}
	a.metrics.Observe(op, started, kind)
}
