package middleware

// identity.go defines the typed accessors for the identity JWTAuth stores
// on the Echo context.  Handlers use these instead of raw c.Get calls so
// the context key stays private to this package.

import (
    "github.com/labstack/echo/v4"

    "github.com/bazario/auth-service/internal/auth"
)

const identityKey = "identity"

// Identity returns the verified claims JWTAuth attached to the request,
// or ok=false when the request did not pass through JWTAuth.
func Identity(c echo.Context) (*auth.Claims, bool) {
    claims, ok := c.Get(identityKey).(*auth.Claims)
    return claims, ok
}

// UserID returns the authenticated user id, or 0 when unauthenticated.
func UserID(c echo.Context) uint64 {
    if claims, ok := Identity(c); ok {
        return claims.UserID
    }
    return 0
}
