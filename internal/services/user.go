package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/chargeback-backend/internal/data/db"
	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const minPasswordLen = 6

type CreateUserInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	List(dbc dbctx.Context) ([]*types.User, error)
	Create(dbc dbctx.Context, in CreateUserInput) (*types.User, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	ChangePassword(dbc dbctx.Context, password string) error
	// EnsureAdmin creates the admin account when the email is not taken yet.
	EnsureAdmin(ctx context.Context, email, password, displayName string) (bool, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	u, err := us.userRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("User")
	}
	return u, nil
}

func (us *userService) List(dbc dbctx.Context) ([]*types.User, error) {
	if err := requireAdmin(dbc.Ctx); err != nil {
		return nil, err
	}
	return us.userRepo.List(dbc)
}

func (us *userService) Create(dbc dbctx.Context, in CreateUserInput) (*types.User, error) {
	if err := requireAdmin(dbc.Ctx); err != nil {
		return nil, err
	}
	return us.create(dbc, in)
}

func (us *userService) create(dbc dbctx.Context, in CreateUserInput) (*types.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Email == "" || in.Password == "" || in.DisplayName == "" {
		return nil, apierr.Validation("Email, password, and display name are required")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case "":
		role = types.RoleUser
	case types.RoleUser, types.RoleAdmin:
	default:
		return nil, apierr.Validation("role must be %q or %q", types.RoleUser, types.RoleAdmin)
	}

	exists, err := us.userRepo.EmailExists(dbc, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.Validation("User with this email already exists")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &types.User{Email: in.Email, Password: hash, DisplayName: in.DisplayName, Role: role}
	if err := us.userRepo.Create(dbc, u); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Validation("User with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	us.log.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (us *userService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if err := requireAdmin(dbc.Ctx); err != nil {
		return err
	}
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil && rd.UserID == id {
		return apierr.Validation("Cannot delete your own account")
	}
	found, err := us.userRepo.Delete(dbc, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !found {
		return apierr.NotFound("User")
	}
	return nil
}

func (us *userService) ChangePassword(dbc dbctx.Context, password string) error {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil {
		return apierr.Unauthorized("Unauthorized")
	}
	if len(password) < minPasswordLen {
		return apierr.Validation("Password must be at least %d characters", minPasswordLen)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return us.userRepo.UpdatePassword(dbc, rd.UserID, hash)
}

func (us *userService) EnsureAdmin(ctx context.Context, email, password, displayName string) (bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	exists, err := us.userRepo.EmailExists(dbc, email)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}
	if displayName == "" {
		displayName = "Admin"
	}
	if _, err := us.create(dbc, CreateUserInput{Email: email, Password: password, DisplayName: displayName, Role: types.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

func requireAdmin(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("Unauthorized")
	}
	if !rd.IsAdmin() {
		return apierr.Forbidden("Admin only")
	}
	return nil
}
