package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret-key", time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.NotEmpty(t, claims.ID)
}

func TestDefaultTTLIsOneDay(t *testing.T) {
	tm := NewTokenManager("k", 0)
	assert.Equal(t, 24*time.Hour, tm.TTL())
}

func TestParseToken_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret-key", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken("user-123")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_InvalidSignature(t *testing.T) {
	token, _, err := NewTokenManager("secret-key-1", time.Hour).GenerateToken("user-123")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-key-2", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenManager("k", time.Hour).ParseToken(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenManager("k", time.Hour).ParseToken(unsigned)
	assert.Error(t, err)
}

func TestParseToken_RequiresExpiryAndSubject(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-123",
	}}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewTokenManager("k", time.Hour).ParseToken(noExp)
	assert.Error(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewTokenManager("k", time.Hour).ParseToken(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_MalformedAndEmpty(t *testing.T) {
	tm := NewTokenManager("k", time.Hour)

	_, err := tm.ParseToken("not-a-valid-token")
	assert.Error(t, err)

	_, err = tm.ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingSecretRefusesEverything(t *testing.T) {
	tm := NewTokenManager("", time.Hour)

	_, _, err := tm.GenerateToken("user-123")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = tm.ParseToken("a.b.c")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
