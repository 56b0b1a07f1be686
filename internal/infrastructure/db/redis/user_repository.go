package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Key layout:
//
//	user:<id>                 hash with the account fields
//	user:username:<username>  id of the account owning the username
const (
	userKeyPrefix     = "user:"
	usernameKeyPrefix = "user:username:"
)

// createScript claims the username and writes the account in one step.
var createScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], 'id', ARGV[1], 'username', ARGV[2], 'password_hash', ARGV[3], 'role', ARGV[4], 'created_at', ARGV[5])
return 1
`)

// updateRoleScript sets the role only on an existing account.
var updateRoleScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'role', ARGV[1])
return 1
`)

// upsertScript writes the credentials of the account owning the username,
// claiming the username for a new account first when it is free.
// KEYS[2] is the user key prefix; the account key depends on the id read.
var upsertScript = redis.NewScript(`
local id = redis.call('GET', KEYS[1])
if not id then
	id = ARGV[1]
	redis.call('SET', KEYS[1], id)
	redis.call('HSET', KEYS[2] .. id, 'id', id, 'username', ARGV[2], 'created_at', ARGV[5])
end
redis.call('HSET', KEYS[2] .. id, 'password_hash', ARGV[3], 'role', ARGV[4])
return id
`)

// UserRepository implements ports.UserRepository and ports.UserSeeder on Redis.
type UserRepository struct {
	client *redis.Client
	newID  func() string
}

func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client, newID: uuid.NewString}
}

type redisUser struct {
	ID           string `redis:"id"`
	Username     string `redis:"username"`
	PasswordHash string `redis:"password_hash"`
	Role         string `redis:"role"`
	CreatedAt    int64  `redis:"created_at"` // unix milliseconds
}

func (ru redisUser) toDomain() *domain.User {
	return &domain.User{
		ID:           ru.ID,
		Username:     ru.Username,
		PasswordHash: ru.PasswordHash,
		Role:         domain.Role(ru.Role),
		CreatedAt:    time.UnixMilli(ru.CreatedAt).UTC(),
	}
}

func userKey(id string) string { return userKeyPrefix + id }

// validID keeps foreign ids from reaching the username index keys, which
// share the user: prefix.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func usernameKey(username string) string { return usernameKeyPrefix + username }

func validateRole(role domain.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: %q is not supported", domain.ErrInvalidRole, role)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := validateRole(user.Role); err != nil {
		return nil, err
	}

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	ru := redisUser{
		ID:           r.newID(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    createdAt.UnixMilli(),
	}

	keys := []string{usernameKey(ru.Username), userKey(ru.ID)}
	created, err := createScript.Run(ctx, r.client, keys, ru.ID, ru.Username, ru.PasswordHash, ru.Role, ru.CreatedAt).Int()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if created == 0 {
		return nil, domain.ErrUserExists
	}
	return ru.toDomain(), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, err := r.client.Get(ctx, usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return r.findByID(ctx, id)
}

func (r *UserRepository) findByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}
	cmd := r.client.HGetAll(ctx, userKey(id))
	fields, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrUserNotFound
	}

	var ru redisUser
	if err := cmd.Scan(&ru); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return ru.toDomain(), nil
}

// Exists reports whether id names an account. Ids that are not UUIDs never do.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	n, err := r.client.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return n > 0, nil
}

// UpdateRole sets the role of id and returns the account after the update.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrUserNotFound
	}

	updated, err := updateRoleScript.Run(ctx, r.client, []string{userKey(id)}, string(role)).Int()
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	if updated == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.findByID(ctx, id)
}

// Upsert writes the password hash and role for user.Username, creating the
// account when the username is not taken yet. The lookup and both writes run
// as one script.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if err := validateRole(user.Role); err != nil {
		return err
	}

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	keys := []string{usernameKey(user.Username), userKeyPrefix}
	err := upsertScript.Run(ctx, r.client, keys,
		r.newID(), user.Username, user.PasswordHash, string(user.Role), createdAt.UnixMilli(),
	).Err()
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
