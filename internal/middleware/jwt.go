package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/bazario/auth-service/internal/auth"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the decoded identity into the request context.  The token
// service passed in carries the same signing material used at issuance.
// This middleware wraps protected routes so that handlers can read the
// authenticated identity via Identity(c) or the individual keys
// "user_id" and "role".
//
// Rejections are uniform: a missing token answers 401 "No token
// provided" before any verification is attempted, and every verification
// failure (expired, malformed, bad signature) answers 401 "Invalid
// token".  The middleware has no side effects beyond context mutation and
// runs synchronously before any downstream handler.
func JWTAuth(tokens *auth.TokenService) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "statuscode": http.StatusUnauthorized,
                    "message":    "No token provided",
                })
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            claims, err := tokens.Verify(raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "statuscode": http.StatusUnauthorized,
                    "message":    "Invalid token",
                })
            }

            // Expose the identity to handlers and downstream middleware.
            c.Set(identityKey, claims)
            c.Set("user_id", claims.UserID)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}
