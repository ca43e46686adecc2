package users_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-session-server/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := users.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	require.NotEqual(t, "pw123", hash)
	require.True(t, h.Verify("pw123", hash))
	require.False(t, h.Verify("pw1234", hash))

	t.Run("salted per call", func(t *testing.T) {
		other, err := h.Hash("pw123")
		require.NoError(t, err)
		require.NotEqual(t, hash, other)
		require.True(t, h.Verify("pw123", other))
	})

	t.Run("malformed hash is a mismatch", func(t *testing.T) {
		require.False(t, h.Verify("pw123", "not-a-bcrypt-hash"))
		require.False(t, h.Verify("pw123", ""))
	})

	t.Run("too long", func(t *testing.T) {
		_, err := h.Hash(strings.Repeat("a", users.MaxPasswordLength+1))
		require.ErrorIs(t, err, users.ErrPasswordTooLong)
	})

	t.Run("bytes past the limit are not ignored", func(t *testing.T) {
		password := strings.Repeat("a", users.MaxPasswordLength)
		longHash, err := h.Hash(password)
		require.NoError(t, err)
		require.True(t, h.Verify(password, longHash))
		require.False(t, h.Verify(password+"EXTRA", longHash))
	})
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	h := users.NewBcryptHasher(100)
	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestUser_PublicAndClone(t *testing.T) {
	u := &users.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		FullName:     "Alice",
		Roles:        []users.RoleType{users.RoleUser, users.RoleAdmin},
	}

	p := u.Public()
	require.Equal(t, "u-1", p.ID)
	require.Equal(t, []users.RoleType{users.RoleUser, users.RoleAdmin}, p.Roles)

	c := u.Clone()
	c.Roles[0] = users.RoleSuperUser
	require.Equal(t, users.RoleUser, u.Roles[0])

	require.True(t, u.HasRole(users.RoleAdmin))
	require.False(t, u.HasRole(users.RoleSuperUser))
	require.Equal(t, []string{"user", "admin"}, u.RoleStrings())
	require.Equal(t, "alice@example.com", users.NormaliseEmail("  Alice@Example.COM "))
}
