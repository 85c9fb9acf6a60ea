package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	u := User{ID: 42, Email: "t@example.com", Role: RoleTenant, Name: "Tess"}
	tok, err := NewSessionToken(u, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := Parse(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, &u, claims.User())
	assert.True(t, claims.User().IsTenant())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewSessionToken(User{ID: 1, Role: RoleProvider}, "secret", time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok, "other")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := NewSessionToken(User{ID: 1, Role: RoleAdmin}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok, "secret")
	assert.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	tok, err := NewSessionToken(User{ID: 1, Role: Role("guest")}, "secret", time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok, "secret")
	assert.Error(t, err)
}

func TestIsTenantNilSafe(t *testing.T) {
	var u *User
	assert.False(t, u.IsTenant())
	assert.False(t, (&User{Role: RoleProvider}).IsTenant())
}
