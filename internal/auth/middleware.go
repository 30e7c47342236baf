package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-dashboard/pkg/util/errorutil"
)

const claimsKey = "host_claims"

// HostAuth guards the host push endpoint. Without a configured secret
// every request passes, which is how local development runs.
type HostAuth struct {
	tokens *TokenManager
}

// NewHostAuth constructs middleware.
func NewHostAuth(tokens *TokenManager) *HostAuth {
	return &HostAuth{tokens: tokens}
}

// Handle enforces a valid host bearer token when enabled.
func (m *HostAuth) Handle(c *fiber.Ctx) error {
	if !m.tokens.Enabled() {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the verified host claims, if any.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
