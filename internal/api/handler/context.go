package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hireflow/auth-service/internal/api/middleware"
	"github.com/hireflow/auth-service/internal/core/domain"
)

// ctxUser extracts the identity injected by the Auth middleware. A user with
// an id must be present on every protected route; its absence means the
// route was wired without the gate.
func ctxUser(c echo.Context) (domain.AuthenticatedUser, error) {
	user, ok := middleware.UserFromContext(c)
	if !ok || user.ID == "" {
		return domain.AuthenticatedUser{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
