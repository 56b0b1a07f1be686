package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	codec  ports.CredentialCodec
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, codec ports.CredentialCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register hashes the password and creates the account. Duplicate usernames
// surface as internal errors, exactly like any other store failure.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.BadRequest(domain.MsgCredentialsRequired)
	}

	role := domain.Role(in.Role)
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, domain.Internal(err)
	}

	s.log.Debug().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies the password and returns the encoded credential. Unknown
// usernames and wrong passwords yield the same error.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return "", domain.BadRequest(domain.MsgCredentialsRequired)
	}

	user, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.Unauthorized(domain.MsgInvalidCredentials)
		}
		return "", domain.Internal(err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return "", domain.Internal(err)
	}
	if !ok {
		return "", domain.Unauthorized(domain.MsgInvalidCredentials)
	}

	token, err := s.codec.Encode(user.Identity())
	if err != nil {
		return "", domain.Internal(err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}
