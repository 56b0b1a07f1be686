// Package seed loads fixture accounts into the user store at startup.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
)

// Account is one fixture entry. Password is plaintext and is hashed before
// it reaches the store.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Seeder upserts fixture accounts by username using a pool of workers.
type Seeder struct {
	store   ports.UserSeeder
	hasher  ports.PasswordHasher
	workers int
	log     zerolog.Logger
}

func New(store ports.UserSeeder, hasher ports.PasswordHasher, workers int, log zerolog.Logger) *Seeder {
	return &Seeder{store: store, hasher: hasher, workers: workers, log: log}
}

// LoadFile reads a JSON array of accounts.
func LoadFile(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return accounts, nil
}

// Run upserts every account and returns how many were written. Accounts are
// all checked before the first write. Entries for the same username are
// applied in order; failures are collected rather than stopping the run.
func (s *Seeder) Run(ctx context.Context, accounts []Account) (int, error) {
	for i, a := range accounts {
		if a.Username == "" || a.Password == "" {
			return 0, fmt.Errorf("seed: account %d: username and password are required", i)
		}
		if role := roleOf(a); !role.IsValid() {
			return 0, fmt.Errorf("seed: account %d: %w: %q is not supported", i, domain.ErrInvalidRole, role)
		}
	}

	now := time.Now().UTC()
	var written atomic.Int64
	d := queue.NewDispatcher(s.workers,
		func(a Account) string { return a.Username },
		func(ctx context.Context, a Account) error {
			if err := s.upsert(ctx, a, now); err != nil {
				return err
			}
			written.Add(1)
			return nil
		},
		s.log,
	)
	d.Start(ctx)
	d.EnqueueBatch(accounts)
	err := d.Close()

	n := int(written.Load())
	if err != nil {
		return n, err
	}
	s.log.Info().Int("accounts", n).Msg("data seeded successfully")
	return n, nil
}

func (s *Seeder) upsert(ctx context.Context, a Account, now time.Time) error {
	role := roleOf(a)

	hash, err := s.hasher.Hash(a.Password)
	if err != nil {
		return fmt.Errorf("seed: hash %s: %w", a.Username, err)
	}
	if err := s.store.Upsert(ctx, &domain.User{
		Username:     a.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("seed: upsert %s: %w", a.Username, err)
	}
	return nil
}

// roleOf returns the account's role, USER when none is given.
func roleOf(a Account) domain.Role {
	if a.Role == "" {
		return domain.RoleUser
	}
	return domain.Role(a.Role)
}

// RunFile loads path and seeds its accounts.
func (s *Seeder) RunFile(ctx context.Context, path string) (int, error) {
	accounts, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	return s.Run(ctx, accounts)
}
