package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("s3cret", 5)
	token, expiresAt, err := tm.GenerateToken("ada@example.com")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, HostSubject, claims.Subject)
	require.Equal(t, "ada@example.com", claims.Teammate)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("s3cret", 5)

	other, _, err := NewTokenManager("different", 5).GenerateToken("x")
	require.NoError(t, err)
	_, err = tm.ParseToken(other)
	require.Error(t, err)

	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := tm.GenerateToken("x")
	require.NoError(t, err)
	tm.now = time.Now
	_, err = tm.ParseToken(expired)
	require.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Subject: "user"})
	signed, err := foreign.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	require.Error(t, err)
}

func TestDisabledManager(t *testing.T) {
	tm := NewTokenManager("", 0)
	require.False(t, tm.Enabled())
	_, _, err := tm.GenerateToken("x")
	require.ErrorIs(t, err, ErrSecretRequired)
}

func newAuthApp(tm *TokenManager) *fiber.App {
	app := fiber.New()
	app.Post("/push", NewHostAuth(tm).Handle, func(c *fiber.Ctx) error {
		if claims, ok := ClaimsFromContext(c); ok {
			return c.SendString(claims.Teammate)
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestHostAuth(t *testing.T) {
	tm := NewTokenManager("s3cret", 5)
	app := newAuthApp(tm)
	token, _, err := tm.GenerateToken("ada")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/push", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestHostAuthDisabledPassesThrough(t *testing.T) {
	app := newAuthApp(NewTokenManager("", 0))
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/push", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
