package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hireflow/auth-service/internal/api/handler"
	"github.com/hireflow/auth-service/internal/api/middleware"
	"github.com/hireflow/auth-service/internal/core/service"
	"github.com/hireflow/auth-service/internal/infrastructure/config"
	mongostore "github.com/hireflow/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/hireflow/auth-service/internal/infrastructure/db/redis"
	"github.com/hireflow/auth-service/internal/pkg/ttl"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	accessTTL, err := ttl.Parse(cfg.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("access token ttl: %w", err)
	}
	refreshTTL, err := ttl.Parse(cfg.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token ttl: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	roleRepo := mongostore.NewRoleRepository(db)
	resolver := service.NewPermissionResolver(roleRepo, log)
	issuer := service.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, accessTTL, refreshTTL)
	authService := service.NewAuthService(userRepo, resolver, issuer, log)
	limiter := redisstore.NewLoginLimiter(rdb)

	authHandler := handler.NewAuthHandler(authService, limiter, log)
	authGate := middleware.Auth(issuer, resolver)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/account", authHandler.Account, authGate)
	e.POST("/auth/logout", authHandler.Logout, authGate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
