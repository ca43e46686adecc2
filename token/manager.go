package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-server/internal/utils"
)

// Type distinguishes access tokens from refresh tokens
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
	DefaultIssuer             = "go-session-server"
)

const (
	claimType  = "typ"
	claimRoles = "roles"
)

// Claims is the verified content of a token
type Claims struct {
	Subject   string
	Roles     []string
	Type      Type
	ID        string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager mints and verifies access and refresh tokens with a single Signer
type Manager struct {
	signer             Signer
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer: signer,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if m.issuer == "" {
		m.issuer = DefaultIssuer
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}

// IssueAccess mints an access token for subject carrying its current roles
func (m *Manager) IssueAccess(subject string, roles []string) (string, time.Time, error) {
	claims, expiresAt := m.baseClaims(subject, TypeAccess, m.accessTokenExpiry)
	if roles == nil {
		roles = []string{}
	}
	claims[claimRoles] = roles

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("[Manager.IssueAccess] %w", err)
	}
	return signed, expiresAt, nil
}

// IssueRefresh mints a refresh token for subject. Every token carries a fresh jti,
// so two tokens minted within the same second still differ.
func (m *Manager) IssueRefresh(subject string) (string, time.Time, error) {
	claims, expiresAt := m.baseClaims(subject, TypeRefresh, m.refreshTokenExpiry)

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("[Manager.IssueRefresh] %w", err)
	}
	return signed, expiresAt, nil
}

func (m *Manager) baseClaims(subject string, typ Type, ttl time.Duration) (jwt.MapClaims, time.Time) {
	now := m.nowFunc()
	expiresAt := now.Add(ttl)
	return jwt.MapClaims{
		"iss":     m.issuer,
		"sub":     subject,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
		"jti":     uuid.New().String(),
		claimType: string(typ),
	}, time.Unix(expiresAt.Unix(), 0)
}

// Verify checks signature, expiry, issuer and token type.
// Failures wrap ErrExpired, ErrInvalidSignature or ErrMalformed.
func (m *Manager) Verify(raw string, expected Type) (*Claims, error) {
	parsed, err := jwt.Parse(raw, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformed)
	}

	claims := &Claims{Issuer: m.issuer}
	claims.Subject, _ = mapClaims["sub"].(string)
	claims.ID, _ = mapClaims["jti"].(string)
	typ, _ := mapClaims[claimType].(string)
	claims.Type = Type(typ)
	claims.Roles = utils.ToStringSlice(mapClaims[claimRoles])

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}
	if claims.Type != expected {
		return nil, fmt.Errorf("%w: token type %q, expected %q", ErrMalformed, claims.Type, expected)
	}

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
