package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by ID
	nextID int

	findErr   error
	existsErr error
	createErr error
	updateErr error

	findCalls   []string
	existsCalls []string
	updateCalls []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(username, hash string, role domain.Role) *domain.User {
	r.nextID++
	u := &domain.User{ID: strconv.Itoa(r.nextID), Username: username, PasswordHash: hash, Role: role}
	r.users[u.ID] = u
	return cloneUser(u)
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.findCalls = append(r.findCalls, username)
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Exists(_ context.Context, id string) (bool, error) {
	r.existsCalls = append(r.existsCalls, id)
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.users[id]
	return ok, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if !user.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	r.updateCalls = append(r.updateCalls, id+":"+string(role))
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

// spyHasher stores "hashed:<plaintext>" and records Verify arguments.
type spyHasher struct {
	hashErr     error
	verifyErr   error
	verifyCalls []string
}

func (h *spyHasher) Hash(plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *spyHasher) Verify(plaintext, hash string) (bool, error) {
	h.verifyCalls = append(h.verifyCalls, plaintext)
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return hash == "hashed:"+plaintext, nil
}

type failingCodec struct{ err error }

func (c failingCodec) Encode(domain.Identity) (string, error) { return "", c.err }

func (c failingCodec) Decode(string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrInvalidCredential
}

func assertKind(t *testing.T, err error, want domain.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := domain.KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty message")
	}
}
