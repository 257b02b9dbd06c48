package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePermission guards a route behind the resolved permission set: the
// authenticated user must hold at least one of the given permissions.
// Because permissions are resolved per request, revoking one locks the user
// out immediately, not at token expiry.
func RequirePermission(permissions ...string) echo.MiddlewareFunc {
	required := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		required[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			for _, p := range user.Permissions {
				if _, ok := required[p]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
