package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"garrafinha/internal/infrastructure/firebase"
)

type AuthMiddleware struct {
	authClient *firebase.FirebaseAuthClient
}

func NewAuthMiddleware(authClient *firebase.FirebaseAuthClient) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
	}
}

// Authenticate verifies the bearer ID token and stores the caller's uid
// and email in the request context. Accounts without a verified email
// are refused, matching the login gate.
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

		ctx := c.Request().Context()

		uid, err := m.authClient.VerifyToken(ctx, parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		verified, err := m.authClient.EmailVerified(ctx, uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Failed to resolve user account")
		}
		if !verified {
			return echo.NewHTTPError(http.StatusForbidden, "Email address is not verified")
		}

		email, err := m.authClient.UserEmail(ctx, uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Failed to resolve user account")
		}

		c.Set("uid", uid)
		c.Set("email", email)

		return next(c)
	}
}
