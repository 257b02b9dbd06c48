package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hireflow/auth-service/internal/core/domain"
	"github.com/hireflow/auth-service/internal/core/ports"
)

// refreshCookieName is the http-only cookie carrying the refresh token. The
// core only produces and consumes the raw token string; storage in a secure
// cookie is this boundary's job.
const refreshCookieName = "refresh_token"

type AuthHandler struct {
	auth    ports.AuthService
	limiter ports.LoginLimiter // nil disables login throttling
	log     zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, limiter ports.LoginLimiter, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, log: log}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.RegisteredUser
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.auth.Register(c.Request().Context(), domain.Registration{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// Login authenticates a user and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.checkAttempts(c, req.Username); err != nil {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	setRefreshCookie(c, result.RefreshToken, result.RefreshTTL)
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Refresh rotates the session using the refresh-token cookie.
//
// @Summary      Refresh the session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [get]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return domain.ErrInvalidRefreshToken
	}

	result, err := h.auth.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}

	setRefreshCookie(c, result.RefreshToken, result.RefreshTTL)
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Account returns the authenticated user's profile with permissions
// resolved against the role store's current state.
//
// @Summary      Get account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/account [get]
func (h *AuthHandler) Account(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, accountResponse{
		User: h.auth.GetAccount(c.Request().Context(), user),
	})
}

// Logout closes the session and clears the refresh cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.auth.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}

	clearRefreshCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// checkAttempts consults the login limiter. Limiter outages fail open:
// throttling is protection, not a dependency.
func (h *AuthHandler) checkAttempts(c echo.Context, username string) error {
	if h.limiter == nil {
		return nil
	}
	allowed, err := h.limiter.Allow(c.Request().Context(), username+":"+c.RealIP())
	if err != nil {
		h.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		return nil
	}
	if !allowed {
		return domain.ErrTooManyAttempts
	}
	return nil
}

func setRefreshCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
