package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	Seed(ctx context.Context, adminEmail, adminPassword string) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo      repository.UserRepository
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
	tokens        *jwt.Manager
	log           *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository,
	privilegeRepo repository.PrivilegeRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		privilegeRepo: privilegeRepo,
		tokens:        tokens,
		log:           loggerOrNop(log),
	}
}

// Login issues a token and rotates the token version, which ends any other
// session of the same user.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	user.TokenVersion = version

	privileges := user.PrivilegeCodes()
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, roleCode, privileges, version)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: privileges,
	}, nil
}

// Authenticate validates the token and checks it against the user's current
// session.
func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, jwt.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return claims, nil
}

// Seed creates default privileges and roles, grants role privileges on first
// run and creates the owner account when missing.
func (s *authService) Seed(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := s.roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	all, err := s.privilegeRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}

	owner, err := s.roleRepo.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		return fmt.Errorf("load owner role: %w", err)
	}
	if len(owner.Privileges) == 0 {
		if err := s.roleRepo.AssignPrivileges(ctx, owner, all); err != nil {
			return fmt.Errorf("grant owner privileges: %w", err)
		}
		s.log.Info("owner role granted all privileges")
	}

	cashier, err := s.roleRepo.FindByCode(ctx, model.RoleCashier)
	if err != nil {
		return fmt.Errorf("load cashier role: %w", err)
	}
	if len(cashier.Privileges) == 0 {
		granted, err := s.privilegeRepo.FindByCodes(ctx, model.CashierPrivileges)
		if err != nil {
			return fmt.Errorf("load cashier privileges: %w", err)
		}
		if err := s.roleRepo.AssignPrivileges(ctx, cashier, granted); err != nil {
			return fmt.Errorf("grant cashier privileges: %w", err)
		}
	}

	if _, err := s.userRepo.FindByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	admin := &model.User{
		Email:    adminEmail,
		FullName: "Owner",
		RoleID:   &owner.ID,
		IsActive: true,
	}
	admin.CreatedBy = System.ID
	admin.UpdatedBy = System.ID
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("owner account created", zap.String("email", adminEmail))
	return nil
}
