package jwt

import (
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func issue(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	ja := jwtauth.New("HS256", []byte(testSecret), nil)
	_, tokenString, err := ja.Encode(claims)
	require.NoError(t, err)
	return tokenString
}

func TestInspect_ReadsExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := issue(t, map[string]interface{}{
		"sub": "1",
		"exp": exp.Unix(),
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.True(t, claims.HasExpiry())
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.False(t, claims.Expired(time.Now(), 0))
}

func TestInspect_ExpiredTokenStillParses(t *testing.T) {
	token := issue(t, map[string]interface{}{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.True(t, claims.Expired(time.Now(), 30*time.Second))
}

func TestInspect_NoExpiry(t *testing.T) {
	token := issue(t, map[string]interface{}{"sub": "1"})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.False(t, claims.HasExpiry())
	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour), 0))
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect("not-a-token")
	assert.Error(t, err)
}
