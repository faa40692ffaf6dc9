package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestEmptySessionIsUnauthenticated(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
}

func TestOpaqueTokenNeverExpires(t *testing.T) {
	s := NewSession()
	s.SetToken("opaque-session-token")

	assert.True(t, s.Authenticated())
	assert.Equal(t, "opaque-session-token", s.Token())
}

func TestJWTExpiryHonored(t *testing.T) {
	s := NewSession()

	s.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	assert.True(t, s.Authenticated())

	s.SetToken(signedToken(t, time.Now().Add(-time.Hour)))
	assert.False(t, s.Authenticated(), "expired token must not authenticate")
	assert.NotEmpty(t, s.Token(), "the token itself is still attached for the backend to reject")
}

func TestClearRunsHooks(t *testing.T) {
	s := NewSession()
	s.SetToken("tok")

	var cleared int
	s.OnClear(func() { cleared++ })
	s.OnClear(func() { cleared++ })

	s.Clear()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Equal(t, 2, cleared)
}
