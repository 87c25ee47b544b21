package service

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/events"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "  Trader@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Trader@Example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.NewUserData(), user.Data)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	res, err := f.auth.Login(ctx, "trader@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	verified, err := f.auth.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	assert.Equal(t, []events.EventType{events.EventUserRegistered}, f.recorded.types())
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"", "secret1"},
		{"not-an-email", "secret1"},
		{"a@b", "secret1"},
		{"a b@c.de", "secret1"},
		{"a@b.co", "12345"},
		{"a@b.co", ""},
	}
	for _, tc := range cases {
		_, err := f.auth.Register(ctx, tc.email, tc.password)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "%q/%q", tc.email, tc.password)
	}
}

func TestRegisterRejectsCaseVariantDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "A@B.CO", "another1")
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, 409, de.HTTPStatus)
	assert.Equal(t, "User with this email already exists.", de.Message)
}

func TestRegisterNeverStoresAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, "ops@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.NewAdminPolicy([]string{"ops@example.com"}).Allows(stored))
	assert.False(t, auth.NewAdminPolicy(nil).Allows(stored), "removing the address from the allow-list revokes access")
}

func TestLoginRejectsMalformedInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	cases := []struct {
		email, password, message string
	}{
		{"", "", "Email and password are required"},
		{"a@b.co", "", "Email and password are required"},
		{"   ", "secret1", "Email and password are required"},
		{"not-an-email", "x", "Invalid email format"},
	}
	for _, tc := range cases {
		_, err := f.auth.Login(ctx, tc.email, tc.password)
		de := apperrors.ToDomainError(err)
		require.NotNil(t, de, "%q/%q", tc.email, tc.password)
		assert.Equal(t, 400, de.HTTPStatus, "%q/%q", tc.email, tc.password)
		assert.Equal(t, tc.message, de.Message)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	_, wrongPassword := f.auth.Login(ctx, "a@b.co", "wrong-password")
	_, unknownEmail := f.auth.Login(ctx, "nobody@b.co", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, apperrors.ToDomainError(wrongPassword).Message, apperrors.ToDomainError(unknownEmail).Message)
	assert.Equal(t, 401, apperrors.ToDomainError(unknownEmail).HTTPStatus)
	assert.Equal(t, "Invalid credentials", apperrors.ToDomainError(unknownEmail).Message)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.auth.Register(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	other := auth.NewTokenManager("other-secret", time.Hour)
	foreign, _, err := other.GenerateToken(user.ID)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	valid, _, err := f.auth.TokenManager().GenerateToken(user.ID)
	require.NoError(t, err)
	_, err = f.auth.Verify(ctx, valid)
	require.NoError(t, err)

	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.jwt",
		"foreign":   foreign,
		"alg none":  noneToken,
		"expired":   stale,
		"truncated": valid[:len(valid)-4],
	} {
		_, err := f.auth.Verify(ctx, token)
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"), name)
	}
}

func TestVerifyRejectsTokenOfDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.auth.Register(ctx, "gone@b.co", "secret1")
	require.NoError(t, err)
	res, err := f.auth.Login(ctx, "gone@b.co", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.admin.DeleteUser(ctx, "admin", user.ID))

	_, err = f.auth.Verify(ctx, res.Token)
	require.Error(t, err)
	assert.Equal(t, "User not found", apperrors.ToDomainError(err).Message)
}
