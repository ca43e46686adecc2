package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/token"
	"github.com/stretchr/testify/require"
)

const (
	secretStr   = "0123456789abcdef0123456789abcdef"
	otherSecret = "fedcba9876543210fedcba9876543210"
	issuer      = "com.testissuer"
	testSubject = "user-1"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testFixture struct {
	clock   *testClock
	manager *token.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := token.New(token.NewHMACSigner(secretStr),
		token.WithIssuer(issuer),
		token.WithNowFunc(clock.Now),
		token.WithTokenExpiry(15*time.Minute, 7*24*time.Hour),
	)
	return &testFixture{clock: clock, manager: m}
}

func TestManager_AccessRoundTrip(t *testing.T) {
	f := setupTestFixture(t)

	raw, expiresAt, err := f.manager.IssueAccess(testSubject, []string{"user", "admin"})
	require.NoError(t, err)
	require.WithinDuration(t, f.clock.now.Add(15*time.Minute), expiresAt, 0)

	claims, err := f.manager.Verify(raw, token.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Equal(t, []string{"user", "admin"}, claims.Roles)
	require.Equal(t, token.TypeAccess, claims.Type)
	require.Equal(t, issuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, expiresAt, claims.ExpiresAt, 0)
}

func TestManager_AccessExpires(t *testing.T) {
	f := setupTestFixture(t)

	raw, _, err := f.manager.IssueAccess(testSubject, []string{"user"})
	require.NoError(t, err)

	f.clock.Advance(14 * time.Minute)
	_, err = f.manager.Verify(raw, token.TypeAccess)
	require.NoError(t, err)

	f.clock.Advance(time.Minute + time.Second)
	_, err = f.manager.Verify(raw, token.TypeAccess)
	require.ErrorIs(t, err, token.ErrExpired)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestManager_RefreshExpiresAfterSevenDays(t *testing.T) {
	f := setupTestFixture(t)

	raw, expiresAt, err := f.manager.IssueRefresh(testSubject)
	require.NoError(t, err)
	require.WithinDuration(t, f.clock.now.Add(7*24*time.Hour), expiresAt, 0)

	f.clock.Advance(7*24*time.Hour - time.Minute)
	claims, err := f.manager.Verify(raw, token.TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, testSubject, claims.Subject)
	require.Empty(t, claims.Roles)

	f.clock.Advance(2 * time.Minute)
	_, err = f.manager.Verify(raw, token.TypeRefresh)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestManager_RefreshTokensAreUnique(t *testing.T) {
	f := setupTestFixture(t)

	first, _, err := f.manager.IssueRefresh(testSubject)
	require.NoError(t, err)
	second, _, err := f.manager.IssueRefresh(testSubject)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	f := setupTestFixture(t)

	other := token.New(token.NewHMACSigner(otherSecret),
		token.WithIssuer(issuer),
		token.WithNowFunc(f.clock.Now),
	)
	raw, _, err := other.IssueAccess(testSubject, []string{"admin"})
	require.NoError(t, err)

	_, err = f.manager.Verify(raw, token.TypeAccess)
	require.ErrorIs(t, err, token.ErrInvalidSignature)
	require.NotErrorIs(t, err, token.ErrExpired)
}

func TestManager_RejectsTamperedPayload(t *testing.T) {
	f := setupTestFixture(t)

	raw, _, err := f.manager.IssueAccess(testSubject, []string{"user"})
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	// swap in the payload of a different token, keeping the original signature
	forged, _, err := f.manager.IssueAccess("someone-else", []string{"admin"})
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = f.manager.Verify(strings.Join(parts, "."), token.TypeAccess)
	require.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestManager_RejectsWrongType(t *testing.T) {
	f := setupTestFixture(t)

	refresh, _, err := f.manager.IssueRefresh(testSubject)
	require.NoError(t, err)
	_, err = f.manager.Verify(refresh, token.TypeAccess)
	require.ErrorIs(t, err, token.ErrMalformed)

	access, _, err := f.manager.IssueAccess(testSubject, nil)
	require.NoError(t, err)
	_, err = f.manager.Verify(access, token.TypeRefresh)
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestManager_RejectsGarbage(t *testing.T) {
	f := setupTestFixture(t)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := f.manager.Verify(raw, token.TypeRefresh)
		require.ErrorIs(t, err, token.ErrMalformed, raw)
	}
}

func TestManager_RejectsOtherIssuer(t *testing.T) {
	f := setupTestFixture(t)

	other := token.New(token.NewHMACSigner(secretStr),
		token.WithIssuer("someone.else"),
		token.WithNowFunc(f.clock.Now),
	)
	raw, _, err := other.IssueRefresh(testSubject)
	require.NoError(t, err)

	_, err = f.manager.Verify(raw, token.TypeRefresh)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestNew_Defaults(t *testing.T) {
	m := token.New(token.NewHMACSigner(secretStr))
	require.Equal(t, token.DefaultAccessTokenExpiry, m.AccessTokenExpiry())
	require.Equal(t, token.DefaultRefreshTokenExpiry, m.RefreshTokenExpiry())
}

func TestHMACsigner_DoesNotPrintSecret(t *testing.T) {
	s := token.NewHMACSigner(secretStr)
	require.NotContains(t, s.String(), secretStr)
}
