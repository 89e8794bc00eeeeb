package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/validator"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Me(ctx context.Context, actor Actor) (*model.UserResponse, error)
	ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager, ttl time.Duration, log *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, ttl: ttl, log: log, now: time.Now}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.now()
	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.DisplayName(), string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now.UTC()); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		at := now.UTC()
		user.LastLoginAt = &at
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.ttl).UTC(),
		User:      user.ToResponse(),
	}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, req *ChangePasswordRequest) error {
	if err := validator.Validate(req); err != nil {
		return invalid("%v", err)
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, user.Password)
}
