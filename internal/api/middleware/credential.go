package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Credential decodes the credential cookie and injects the identity into the
// context under handler.IdentityKey. Requests without a readable cookie pass
// through anonymously; authorization is decided downstream.
func Credential(codec ports.CredentialCodec, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			identity, err := codec.Decode(cookie.Value)
			if err != nil {
				return next(c)
			}

			c.Set(handler.IdentityKey, identity)
			return next(c)
		}
	}
}
