package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/internal/testutil"
	"cashflow-api/pkg/jwt"
)

func newAuthEnv(t *testing.T) (AuthService, repository.RoleRepository) {
	t.Helper()
	db := testutil.NewDB(t)
	roles := repository.NewRoleRepo(db)
	svc := NewAuthService(repository.NewUserRepo(db), roles, repository.NewPrivilegeRepo(db),
		jwt.NewManager("test-secret", time.Hour), nil)
	if err := svc.Seed(context.Background(), "dono@loja.com", "segredo123"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return svc, roles
}

func TestSeedGrantsDefaultRoles(t *testing.T) {
	svc, roles := newAuthEnv(t)
	ctx := context.Background()

	// a second run must not duplicate anything
	if err := svc.Seed(ctx, "dono@loja.com", "segredo123"); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	owner, err := roles.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		t.Fatalf("owner role: %v", err)
	}
	if len(owner.Privileges) != len(model.DefaultPrivileges) {
		t.Fatalf("owner should hold every privilege, got %d", len(owner.Privileges))
	}
	cashierRole, err := roles.FindByCode(ctx, model.RoleCashier)
	if err != nil {
		t.Fatalf("cashier role: %v", err)
	}
	if len(cashierRole.Privileges) != len(model.CashierPrivileges) {
		t.Fatalf("cashier should hold %d privileges, got %d", len(model.CashierPrivileges), len(cashierRole.Privileges))
	}
	all, err := roles.FindAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 roles, got %d (%v)", len(all), err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "dono@loja.com", "segredo123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(res.Privileges) != len(model.DefaultPrivileges) {
		t.Fatalf("expected owner privileges in response, got %v", res.Privileges)
	}

	claims, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.Email != "dono@loja.com" || claims.RoleCode != model.RoleOwner {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := svc.Login(ctx, "dono@loja.com", "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ninguem@loja.com", "segredo123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewLoginEndsPreviousSession(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "dono@loja.com", "segredo123")
	if err != nil {
		t.Fatalf("first Login: %v", err)
	}
	second, err := svc.Login(ctx, "dono@loja.com", "segredo123")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}

	if _, err := svc.Authenticate(ctx, first.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired for the first token, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, second.Token); err != nil {
		t.Fatalf("second token should stay valid: %v", err)
	}
}
