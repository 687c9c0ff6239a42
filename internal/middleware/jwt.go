package middleware // reusable HTTP middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nkorzh/identity-service/internal/utils"
)

// SessionAuth returns an Echo middleware that validates a Bearer session
// token and injects its subject and email claims into the request context.
// Handlers behind it read `c.Get("user_id")` and `c.Get("email")`.  Reset
// tokens are rejected here regardless of signature: their purpose claim is
// not "session".
func SessionAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseSession(secret, raw)
			if err != nil {
				// Expired and invalid collapse to one message for clients;
				// a session prober gets nothing to differentiate on.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}
