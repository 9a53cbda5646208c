package http

import (
	"time"

	"loantrack/internal/adapter/middleware"
	"loantrack/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Routes gathers what RegisterRoutes needs.
type Routes struct {
	Health         *Handler
	Auth           *AuthHandler
	Applications   *ApplicationHandler
	Resolver       middleware.Resolver
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration
	AuthLimiter    *middleware.RateLimiter
	Log            *zap.Logger
}

func RegisterRoutes(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)

	authn := middleware.Authenticate(r.Resolver, r.Log)
	adminOnly := middleware.RequireRole(identity.RoleAdmin)
	idem := middleware.Idempotency(r.Redis, r.IdempotencyTTL, r.Log)

	auth := e.Group("/api/auth")
	auth.POST("/register", r.Auth.Register, r.AuthLimiter.Middleware())
	auth.POST("/login", r.Auth.Login, r.AuthLimiter.Middleware())
	auth.GET("/users", r.Auth.ListUsers, authn, adminOnly)
	auth.DELETE("/users/:user_id", r.Auth.DeleteUser, authn, adminOnly)
	auth.POST("/admin/create", r.Auth.CreateAdmin, authn, adminOnly)
	auth.POST("/verifier/create", r.Auth.CreateVerifier, authn, adminOnly)

	loan := e.Group("/api/loan", authn)
	loan.POST("/new-application", r.Applications.Submit, idem)
	loan.GET("/applications", r.Applications.List)
	loan.GET("/applications/:application_id", r.Applications.Get)
	loan.GET("/applications/:application_id/decisions", r.Applications.History)
	loan.POST("/applications/:application_id/decision", r.Applications.Decide, idem)
	loan.POST("/applications/:application_id/verify", r.Applications.Verify, idem)
	loan.POST("/applications/:application_id/approve", r.Applications.Approve, idem)
	loan.GET("/stats", r.Applications.Stats)
}
