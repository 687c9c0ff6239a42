package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken(testSecret, "user-1", "a@x.com", 7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := ParseSession(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestSessionTokenExpired(t *testing.T) {
	tok, err := NewSessionToken(testSecret, "user-1", "a@x.com", -1)
	require.NoError(t, err)

	_, err = ParseSession(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken(testSecret, "user-1", "a@x.com", 7)
	require.NoError(t, err)

	_, err = ParseSession("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionTokenMalformed(t *testing.T) {
	_, err := ParseSession(testSecret, "garbage.token.value")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetTokenRoundTrip(t *testing.T) {
	tok, err := NewResetToken(testSecret, "a@x.com", 60)
	require.NoError(t, err)

	email, err := ParseReset(testSecret, tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestResetTokenExpired(t *testing.T) {
	tok, err := NewResetToken(testSecret, "a@x.com", -1)
	require.NoError(t, err)

	_, err = ParseReset(testSecret, tok.Raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPurposeSeparation(t *testing.T) {
	session, err := NewSessionToken(testSecret, "user-1", "a@x.com", 7)
	require.NoError(t, err)
	reset, err := NewResetToken(testSecret, "a@x.com", 60)
	require.NoError(t, err)

	_, err = ParseReset(testSecret, session.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid, "session token must not pass as reset")

	_, err = ParseSession(testSecret, reset.Raw)
	assert.ErrorIs(t, err, ErrTokenInvalid, "reset token must not pass as session")
}

func TestHashResetRaw(t *testing.T) {
	h1 := HashResetRaw("token-a")
	h2 := HashResetRaw("token-a")
	h3 := HashResetRaw("token-b")

	assert.Equal(t, h1, h2, "deterministic")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64, "sha-256 hex")
	assert.NotContains(t, h1, "token-a")
}
