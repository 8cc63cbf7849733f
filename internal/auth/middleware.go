package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is where the middleware stores the verified caller ID.
const ContextKeyUserID = "user_id"

// Middleware returns an echo middleware that validates a Bearer token and
// injects the caller's user ID into the request context. Verification
// failure rejects the request outright; there is no anonymous mode.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			userID, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextKeyUserID, userID)
			return next(c)
		}
	}
}

// CallerID extracts the verified user ID placed by Middleware.
func CallerID(c echo.Context) string {
	if v, ok := c.Get(ContextKeyUserID).(string); ok {
		return v
	}
	return ""
}
