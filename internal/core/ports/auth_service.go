package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Username string
	Password string
	Role     string // optional, defaults to USER
}

// LoginInput is the DTO passed from the transport layer to AuthService.Login.
type LoginInput struct {
	Username string
	Password string
}

// UpdateRoleInput carries the target account and its new role. Role is passed
// to the store unchecked; the store validates it.
type UpdateRoleInput struct {
	UserID string
	Role   string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns the encoded credential for the authenticated account.
	Login(ctx context.Context, in LoginInput) (string, error)
}

type RoleService interface {
	// UpdateUserRole changes the role of in.UserID on behalf of caller.
	// caller is nil when the request carried no readable credential.
	UpdateUserRole(ctx context.Context, caller *domain.Identity, in UpdateRoleInput) (*domain.User, error)
}
