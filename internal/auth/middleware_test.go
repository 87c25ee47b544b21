package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-desk/internal/domain"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

type stubVerifier struct {
	users map[string]*domain.User
}

func (s stubVerifier) Verify(_ context.Context, token string) (*domain.User, error) {
	user, ok := s.users[token]
	if !ok {
		return nil, apperrors.NewUnauthorized("Authentication failed: Invalid token")
	}
	return user, nil
}

func newTestApp(policy *AdminPolicy) *fiber.App {
	verifier := stubVerifier{users: map[string]*domain.User{
		"user-token":  {ID: "u1", Email: "trader@example.com", Role: domain.RoleUser},
		"admin-token": {ID: "u2", Email: "boss@example.com", Role: domain.RoleAdmin},
	}}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message})
		},
	})
	mw := NewAuthMiddleware(verifier)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(principal.User.ID)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(policy), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body := map[string]any{}
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(NewAdminPolicy(nil))

	resp, body := doRequest(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required: No token provided", body["error"])

	resp, _ = doRequest(t, app, "/me", "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = doRequest(t, app, "/me", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication failed: Invalid token", body["error"])

	resp, _ = doRequest(t, app, "/me", "bearer user-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app := newTestApp(NewAdminPolicy([]string{"trader@example.com"}))

	resp, _ := doRequest(t, app, "/admin", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "allow-listed email grants admin")

	app = newTestApp(NewAdminPolicy(nil))
	resp, body := doRequest(t, app, "/admin", "Bearer user-token")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied. Admin only.", body["error"])
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = BearerToken("Bearer ")
	assert.Error(t, err)
}
