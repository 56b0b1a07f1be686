package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/credential"
	"github.com/99minutos/auth-service/internal/password"
)

func newAuthSvc(repo *stubUserRepo, hasher ports.PasswordHasher) *AuthService {
	return NewAuthService(repo, hasher, credential.NewPlain(), zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, password.NewBcrypt(bcrypt.MinCost))

	user, err := svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "pass123", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" || user.Username != "alice" || user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DefaultsRoleToUser(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), &spyHasher{})

	user, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role USER, got %s", user.Role)
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, &spyHasher{})

	for _, in := range []ports.RegisterInput{
		{Password: "pass"},
		{Username: "bob"},
		{},
	} {
		_, err := svc.Register(context.Background(), in)
		assertKind(t, err, domain.KindBadRequest)
	}
	if len(repo.users) != 0 {
		t.Fatalf("no account should have been created")
	}
}

func TestAuthService_Register_DuplicateIsInternal(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), &spyHasher{})

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass2"})
	assertKind(t, err, domain.KindInternal)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected cause ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_InvalidRoleIsInternal(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo(), &spyHasher{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "eve", Password: "pass", Role: "ROOT"})
	assertKind(t, err, domain.KindInternal)
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, &spyHasher{hashErr: errors.New("boom")})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass"})
	assertKind(t, err, domain.KindInternal)
	if len(repo.users) != 0 {
		t.Fatalf("no account should have been created")
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection refused")
	svc := newAuthSvc(repo, &spyHasher{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "pass"})
	assertKind(t, err, domain.KindInternal)
	if err.Error() != "connection refused" {
		t.Fatalf("expected store message to pass through, got %q", err.Error())
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	stored := repo.seed("carol", "hashed:s3cret", domain.RoleSuperAdmin)
	hasher := &spyHasher{}
	svc := newAuthSvc(repo, hasher)

	token, err := svc.Login(context.Background(), ports.LoginInput{Username: "carol", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	id, err := credential.NewPlain().Decode(token)
	if err != nil {
		t.Fatalf("token does not decode: %v", err)
	}
	if id != stored.Identity() {
		t.Fatalf("expected identity %+v, got %+v", stored.Identity(), id)
	}
	if len(hasher.verifyCalls) != 1 || hasher.verifyCalls[0] != "s3cret" {
		t.Fatalf("expected one verify call with the plaintext, got %v", hasher.verifyCalls)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, &spyHasher{})

	for _, in := range []ports.LoginInput{{Password: "p"}, {Username: "u"}, {}} {
		_, err := svc.Login(context.Background(), in)
		assertKind(t, err, domain.KindBadRequest)
	}
	if len(repo.findCalls) != 0 {
		t.Fatalf("store must not be queried for invalid input")
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, &spyHasher{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "nonexistentuser", Password: "nonexistentpassword"})
	assertKind(t, err, domain.KindUnauthorized)
	if err.Error() != domain.MsgInvalidCredentials {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(repo.findCalls) != 1 || repo.findCalls[0] != "nonexistentuser" {
		t.Fatalf("expected one lookup by username, got %v", repo.findCalls)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("dave", "hashed:goodpass", domain.RoleUser)
	hasher := &spyHasher{}
	svc := newAuthSvc(repo, hasher)

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "dave", Password: "incorrect_password"})
	assertKind(t, err, domain.KindUnauthorized)
	if err.Error() != domain.MsgInvalidCredentials {
		t.Fatalf("wrong password must be indistinguishable from unknown user, got %q", err.Error())
	}
	if len(hasher.verifyCalls) != 1 || hasher.verifyCalls[0] != "incorrect_password" {
		t.Fatalf("expected one verify call with the supplied password, got %v", hasher.verifyCalls)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("Unexpected error")
	svc := newAuthSvc(repo, &spyHasher{})

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "user1", Password: "user1"})
	assertKind(t, err, domain.KindInternal)
}

func TestAuthService_Login_MalformedHashIsInternal(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("frank", "not-a-bcrypt-hash", domain.RoleUser)
	svc := newAuthSvc(repo, password.NewBcrypt(bcrypt.MinCost))

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "frank", Password: "whatever"})
	assertKind(t, err, domain.KindInternal)
}

func TestAuthService_Login_EncodeFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.seed("gina", "hashed:pw", domain.RoleUser)
	svc := NewAuthService(repo, &spyHasher{}, failingCodec{err: errors.New("encode failed")}, zerolog.Nop())

	_, err := svc.Login(context.Background(), ports.LoginInput{Username: "gina", Password: "pw"})
	assertKind(t, err, domain.KindInternal)
}
