package service

import (
	"context"
	"errors"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=255"`
	Role     string `json:"role" validate:"required"`
}

var userPatchKeys = []string{"full_name", "role", "is_active", "password"}

type UserService interface {
	List(ctx context.Context) ([]model.UserResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	Create(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	SeedAdmin(ctx context.Context, username, password string) (bool, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type userService struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(users repository.UserRepository, log *zap.Logger) UserService {
	return &userService{users: users, log: log}
}

func (s *userService) List(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse()
	}
	return out, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validator.Validate(req); err != nil {
		return nil, invalid("%v", err)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, invalid("%v", err)
	}

	user := &model.User{
		Username: req.Username,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		IsActive: true,
	}
	user.CreatedBy = actor.UserID.String()
	user.UpdatedBy = actor.UserID.String()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, patch model.Patch, actor Actor) (*model.UserResponse, error) {
	if unknown := patch.Unknown(userPatchKeys...); len(unknown) > 0 {
		return nil, invalid("unknown fields: %s", strings.Join(unknown, ", "))
	}

	fields := map[string]interface{}{}
	if patch.Has("full_name") {
		var v string
		if !patch.IsNull("full_name") {
			if err := patch.Decode("full_name", &v); err != nil {
				return nil, invalid("%v", err)
			}
		}
		fields["full_name"] = strings.TrimSpace(v)
	}
	if patch.Has("role") {
		var raw string
		if err := patch.Decode("role", &raw); err != nil {
			return nil, invalid("%v", err)
		}
		role, err := model.ParseRole(raw)
		if err != nil {
			return nil, invalid("%v", err)
		}
		if id == actor.UserID && role != actor.Role {
			return nil, invalid("you cannot change your own role")
		}
		fields["role"] = role
	}
	if patch.Has("is_active") {
		var v bool
		if err := patch.Decode("is_active", &v); err != nil {
			return nil, invalid("%v", err)
		}
		if id == actor.UserID && !v {
			return nil, invalid("you cannot deactivate your own account")
		}
		fields["is_active"] = v
	}
	if patch.Has("password") {
		var v string
		if err := patch.Decode("password", &v); err != nil || len(v) < 6 {
			return nil, invalid("password must be at least 6 characters")
		}
		var tmp model.User
		if err := tmp.SetPassword(v); err != nil {
			return nil, err
		}
		fields["password"] = tmp.Password
	}

	if len(fields) > 0 {
		fields["updated_by"] = actor.UserID.String()
		if err := s.users.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if id == actor.UserID {
		return invalid("you cannot delete your own account")
	}
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// SeedAdmin creates the first admin account unless username already
// exists. It reports whether a user was created.
func (s *userService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	admin := &model.User{
		Username: username,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.log.Info("seeded admin user", zap.String("username", username))
	return true, nil
}

func (s *userService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("password must be at least 6 characters")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	s.log.Info("password reset", zap.String("username", username))
	return nil
}
