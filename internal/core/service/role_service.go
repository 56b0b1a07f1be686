package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const (
	msgRoleFieldsRequired = "Bad request: userId and role are required"
	msgTargetNotFound     = "Not found: user not found"
)

// RoleService gates role changes behind a SUPER_ADMIN credential.
type RoleService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewRoleService(repo ports.UserRepository, log zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, log: log}
}

// UpdateUserRole runs the guard and then applies the change. The order of
// checks fixes which status wins when several conditions hold at once:
// credential, caller role, body fields, target existence.
func (s *RoleService) UpdateUserRole(ctx context.Context, caller *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
	if err := s.guard(ctx, caller, in); err != nil {
		return nil, err
	}
	return s.apply(ctx, in)
}

func (s *RoleService) guard(ctx context.Context, caller *domain.Identity, in ports.UpdateRoleInput) error {
	if caller == nil {
		return domain.Unauthorized(domain.MsgUnauthorized)
	}
	// Exact match only; ADMIN gets no partial privilege.
	if caller.Role != domain.RoleSuperAdmin {
		return domain.Unauthorized(domain.MsgUnauthorized)
	}

	if in.UserID == "" || in.Role == "" {
		return domain.BadRequest(msgRoleFieldsRequired)
	}

	exists, err := s.repo.Exists(ctx, in.UserID)
	if err != nil {
		return domain.Internal(err)
	}
	if !exists {
		return domain.NotFound(msgTargetNotFound)
	}
	return nil
}

// apply writes the new role. The role string is not checked here; the store
// rejects values outside the enumeration.
func (s *RoleService) apply(ctx context.Context, in ports.UpdateRoleInput) (*domain.User, error) {
	updated, err := s.repo.UpdateRole(ctx, in.UserID, domain.Role(in.Role))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NotFound(msgTargetNotFound)
		}
		return nil, domain.Internal(err)
	}

	s.log.Debug().Str("user_id", updated.ID).Str("role", string(updated.Role)).Msg("user role updated")
	return updated, nil
}
