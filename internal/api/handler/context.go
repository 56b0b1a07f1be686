package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// IdentityKey is the echo context key the credential middleware stores the
// decoded identity under.
const IdentityKey = "identity"

// ctxIdentity returns the caller's identity, or nil when the request carried
// no readable credential. Rejecting anonymous callers is up to the service.
func ctxIdentity(c echo.Context) *domain.Identity {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	if !ok {
		return nil
	}
	return &id
}
