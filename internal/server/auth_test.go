package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codex/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"iss": "codex-api",
		"aud": "codex-client",
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestAuthRequired_JWT(t *testing.T) {
	const secret = "jwt-test-secret"

	s := &Server{
		config:          &config.Config{JWTSecret: secret},
		consumedTickets: make(map[string]consumedTicketEntry),
	}

	app := fiber.New()
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	do := func(t *testing.T, authHeader string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("valid token passes", func(t *testing.T) {
		token := signTestToken(t, secret, baseClaims("5"))
		resp := do(t, "Bearer "+token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header fails", func(t *testing.T) {
		resp := do(t, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signature fails", func(t *testing.T) {
		token := signTestToken(t, "some-other-secret", baseClaims("5"))
		resp := do(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong issuer fails", func(t *testing.T) {
		claims := baseClaims("5")
		claims["iss"] = "someone-else"
		resp := do(t, "Bearer "+signTestToken(t, secret, claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong audience fails", func(t *testing.T) {
		claims := baseClaims("5")
		claims["aud"] = "other-client"
		resp := do(t, "Bearer "+signTestToken(t, secret, claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token fails", func(t *testing.T) {
		claims := baseClaims("5")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		resp := do(t, "Bearer "+signTestToken(t, secret, claims))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-numeric subject fails", func(t *testing.T) {
		resp := do(t, "Bearer "+signTestToken(t, secret, baseClaims("zeus")))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequired_RevokedJTI(t *testing.T) {
	const secret = "jwt-test-secret"

	s, rdb := newTicketTestServer(t)
	s.config = &config.Config{JWTSecret: secret}

	app := fiber.New()
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	claims := baseClaims("9")
	claims["jti"] = "revoked-session"
	token := signTestToken(t, secret, claims)

	require.NoError(t, rdb.Set(context.Background(), "blacklist:revoked-session", "1", time.Hour).Err())

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
