package router // package router wires HTTP routes to handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nkorzh/identity-service/internal/config"
	"github.com/nkorzh/identity-service/internal/handler"
	"github.com/nkorzh/identity-service/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// dependencies: currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints and the protected
// group.  The unauthenticated operations live under /v1/auth and sit behind
// the rate limiter; /v1/me requires a valid session token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(rl, rdb))
	g.POST("/signup", a.SignUp)
	g.POST("/login", a.Login)
	g.POST("/google", a.GoogleSignIn)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.SessionAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
