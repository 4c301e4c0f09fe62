package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"chambaYaWs/internal/shared/auth"
)

const contextUserKey = "chambaya.userId"

// NewAuthMiddleware valida el bearer JWT emitido por el backend principal y
// deja el subject del token como identidad del actor en el contexto.
func NewAuthMiddleware(validator auth.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.ExtractBearerToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			claims, err := validator.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(contextUserKey, claims.RegisteredClaims.Subject)
			return next(c)
		}
	}
}

// ActorID returns the authenticated user behind the request, empty when the
// auth middleware did not run.
func ActorID(c echo.Context) string {
	if userID, ok := c.Get(contextUserKey).(string); ok {
		return userID
	}
	return ""
}
