package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// UserRepository is the user store consumed by the core services.
//
// Implementations enforce username uniqueness (Create returns
// domain.ErrUserExists on collision) and validate roles on write
// (domain.ErrInvalidRole). FindByUsername and UpdateRole return
// domain.ErrUserNotFound when no account matches.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
}

// UserSeeder inserts or refreshes an account keyed by username.
type UserSeeder interface {
	Upsert(ctx context.Context, user *domain.User) error
}
