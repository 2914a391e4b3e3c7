package middleware // reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming of the Authorization header

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware

    "github.com/batiflow/batiflow-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the authenticated identity into the request context.  The provided
// secret must match the one used when issuing tokens.  This middleware wraps
// every protected route so that handlers can read the caller via
// `c.Get("user_id")`, `c.Get("email")` and `c.Get("role")`.
//
// All failure modes — missing header, malformed header, bad signature,
// expired token — answer with the same 401 body so that callers cannot
// distinguish them.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")
            if raw == "" {
                return unauthorized(c)
            }

            // VerifyToken checks the HS256 signature and expiry and
            // extracts the identity claims.
            claims, err := utils.VerifyToken(secret, raw)
            if err != nil {
                return unauthorized(c)
            }

            // Expose the identity to handlers and downstream middleware.
            c.Set("user_id", claims.UserID)
            c.Set("email", claims.Email)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentification requise"})
}
