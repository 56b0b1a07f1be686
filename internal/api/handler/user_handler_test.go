package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

type stubRoleService struct {
	fn func(ctx context.Context, caller *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error)
}

func (s *stubRoleService) UpdateUserRole(ctx context.Context, caller *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
	return s.fn(ctx, caller, in)
}

func TestUserHandler_UpdateUserRole_Success(t *testing.T) {
	e := newTestEcho()
	caller := domain.Identity{ID: "a", Username: "root", Role: domain.RoleSuperAdmin}
	stub := &stubRoleService{
		fn: func(ctx context.Context, got *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
			if got == nil || *got != caller {
				t.Fatalf("unexpected caller: %+v", got)
			}
			if in.UserID != "b" || in.Role != "ADMIN" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "b", Username: "bob", Role: domain.RoleAdmin}, nil
		},
	}

	c, rec := newJSONContext(e, http.MethodPut, "/updateUserRole", `{"userId":"b","role":"ADMIN"}`)
	c.Set(IdentityKey, caller)

	if err := NewUserHandler(stub).UpdateUserRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Data    domain.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.Message == "" || resp.Data.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_UpdateUserRole_AnonymousCaller(t *testing.T) {
	e := newTestEcho()
	stub := &stubRoleService{
		fn: func(ctx context.Context, got *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
			if got != nil {
				t.Fatalf("expected nil caller, got %+v", got)
			}
			return nil, domain.Unauthorized(domain.MsgUnauthorized)
		},
	}

	c, _ := newJSONContext(e, http.MethodPut, "/updateUserRole", `{"userId":"b","role":"ADMIN"}`)
	expectKind(t, NewUserHandler(stub).UpdateUserRole(c), domain.KindUnauthorized)
}

func TestUserHandler_UpdateUserRole_UnreadableBodyReachesService(t *testing.T) {
	e := newTestEcho()
	called := false
	stub := &stubRoleService{
		fn: func(ctx context.Context, got *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
			called = true
			if in.UserID != "" || in.Role != "" {
				t.Fatalf("expected empty input, got %+v", in)
			}
			return nil, domain.Unauthorized(domain.MsgUnauthorized)
		},
	}

	c, _ := newJSONContext(e, http.MethodPut, "/updateUserRole", `{"userId":`)
	err := NewUserHandler(stub).UpdateUserRole(c)
	if !called {
		t.Fatalf("service must decide the response")
	}
	expectKind(t, err, domain.KindUnauthorized)
}

func TestUserHandler_UpdateUserRole_PropagatesKinds(t *testing.T) {
	cases := map[string]error{
		"bad request": domain.BadRequest("Bad request: userId and role are required"),
		"not found":   domain.NotFound("Not found: user not found"),
		"internal":    domain.Internal(domain.ErrInvalidRole),
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubRoleService{
				fn: func(ctx context.Context, got *domain.Identity, in ports.UpdateRoleInput) (*domain.User, error) {
					return nil, want
				},
			}

			c, rec := newJSONContext(e, http.MethodPut, "/updateUserRole", `{"userId":"x","role":"USER"}`)
			c.Set(IdentityKey, domain.Identity{ID: "a", Role: domain.RoleSuperAdmin})

			err := NewUserHandler(stub).UpdateUserRole(c)
			expectKind(t, err, domain.KindOf(want))
			if !strings.EqualFold(err.Error(), want.Error()) {
				t.Fatalf("expected %q, got %q", want.Error(), err.Error())
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("handler must not render errors")
			}
		})
	}
}

func TestCtxIdentity(t *testing.T) {
	e := newTestEcho()
	c, _ := newJSONContext(e, http.MethodGet, "/", "")

	if ctxIdentity(c) != nil {
		t.Fatalf("expected nil identity")
	}

	c.Set(IdentityKey, "not-an-identity")
	if ctxIdentity(c) != nil {
		t.Fatalf("expected nil identity for foreign value")
	}

	c.Set(IdentityKey, domain.Identity{ID: "1", Role: domain.RoleUser})
	if got := ctxIdentity(c); got == nil || got.ID != "1" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}
