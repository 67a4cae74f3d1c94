package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/bazario/auth-service/internal/auth"
	"github.com/bazario/auth-service/internal/handler"
	"github.com/bazario/auth-service/internal/middleware"
	"github.com/bazario/auth-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies
// the necessary middleware.  Credential exchange lives under /v1/auth;
// endpoints requiring a live access token sit behind JWTAuth.  The
// limiter guards the two endpoints an attacker can grind on.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenService, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	// Credential issuance: login verifies the password and mints a token
	// pair, register creates the identity record.
	g.POST("/login", a.Login, limiter)
	g.POST("/register", a.Register)
	// Refresh exchanges a persisted refresh token for a fresh access
	// token without rotating the session.
	g.POST("/refresh", a.Refresh, limiter)
	// Logout requires a valid bearer token; the middleware injects the
	// identity the handler revokes sessions for.
	g.GET("/logout", a.Logout, middleware.JWTAuth(tokens))

	// Protected probe endpoints live under /v1 behind the full gate.
	protected := e.Group("/v1")
	protected.Use(middleware.JWTAuth(tokens))
	protected.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer, model.RoleVendor))
	protected.GET("/me", a.Me)
}
