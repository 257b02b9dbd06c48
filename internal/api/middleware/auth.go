package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hireflow/auth-service/internal/core/domain"
	"github.com/hireflow/auth-service/internal/core/ports"
)

// UserContextKey is where the authenticated user lives in the echo context.
const UserContextKey = "user"

// Auth is the token validation gate. It verifies the access token, requires
// a subject id, resolves the user's permissions live and injects a
// domain.AuthenticatedUser into the context.
//
// Identity is fail-closed: a bad token is always a uniform 401. Permissions
// are fail-open: a missing role, a dangling role reference or a role-store
// outage leaves the request authenticated with an empty permission set, so
// endpoints that need no permissions keep working.
func Auth(verifier ports.TokenVerifier, resolver ports.PermissionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.VerifyAccess(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(UserContextKey, domain.AuthenticatedUser{
				ID:          claims.UserID,
				Name:        claims.Name,
				Email:       claims.Email,
				Role:        claims.Role,
				Permissions: resolver.Resolve(c.Request().Context(), claims.Role),
			})

			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user injected by Auth.
func UserFromContext(c echo.Context) (domain.AuthenticatedUser, bool) {
	user, ok := c.Get(UserContextKey).(domain.AuthenticatedUser)
	return user, ok
}
