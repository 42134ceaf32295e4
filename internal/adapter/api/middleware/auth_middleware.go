package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"marketnotify/internal/infrastructure/identity"
)

type AuthMiddleware struct {
	identityClient *identity.Client
}

func NewAuthMiddleware(identityClient *identity.Client) *AuthMiddleware {
	return &AuthMiddleware{
		identityClient: identityClient,
	}
}

// Authenticate verifies the bearer token against the identity service and
// stores the caller's identity on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		ident, err := m.identityClient.VerifyToken(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", ident.UserID)
		c.Set("username", ident.Username)
		c.Set("role", ident.Role)

		return next(c)
	}
}
