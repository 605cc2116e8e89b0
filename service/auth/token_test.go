package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("steam-tables")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "thermo", "engineer", time.Hour)
	require.NoError(t, err)
	v, err := NewValidator(testSecret, "thermo")
	require.NoError(t, err)
	ident, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "engineer", ident.Subject)
}

func TestTokenExpirationClaim(t *testing.T) {
	claims := func(expiration time.Duration) jwt.MapClaims {
		s, err := GenerateToken(testSecret, "", "engineer", expiration)
		require.NoError(t, err)
		c := jwt.MapClaims{}
		_, _, err = new(jwt.Parser).ParseUnverified(s, c)
		require.NoError(t, err)
		return c
	}
	assert.NotContains(t, claims(0), "exp")
	assert.Contains(t, claims(time.Hour), "exp")
	exp, ok := claims(-time.Minute)["exp"].(float64)
	require.True(t, ok)
	assert.Less(t, exp, float64(time.Now().Unix()))
}

func TestTokenRejected(t *testing.T) {
	v, err := NewValidator(testSecret, "thermo")
	require.NoError(t, err)

	wrongAudience, err := GenerateToken(testSecret, "other", "engineer", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, "thermo", "engineer", -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := GenerateToken([]byte("nope"), "thermo", "engineer", time.Hour)
	require.NoError(t, err)
	noSubject, err := GenerateToken(testSecret, "thermo", "", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "aud": "thermo"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"audience": wrongAudience,
		"expired":  expired,
		"secret":   wrongSecret,
		"subject":  noSubject,
		"none":     none,
		"garbage":  "not.a.token",
	} {
		_, err := v.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestNoSecret(t *testing.T) {
	_, err := NewValidator(nil, "")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = GenerateToken(nil, "", "x", 0)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, AnonymousSubject, IdentityFromContext(ctx).Subject)
	ctx = ContextWithIdentity(ctx, Identity{Subject: "engineer"})
	assert.Equal(t, "engineer", IdentityFromContext(ctx).Subject)
}
