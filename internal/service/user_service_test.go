package service

import (
	"context"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUser(t *testing.T, username, password string, role model.Role, active bool) *model.User {
	t.Helper()
	u := &model.User{Username: username, Role: role, IsActive: active}
	u.ID = uuid.New()
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestAuthService_Login(t *testing.T) {
	active := newUser(t, "kasa1", "gizli123", model.RoleCashier, true)
	inactive := newUser(t, "eski", "gizli123", model.RoleCashier, false)
	users := newFakeUsers(active, inactive)
	tokens := jwt.NewManager("test-secret-test-secret-test-secret", time.Hour)
	svc := NewAuthService(users, tokens, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "kasa1", "yanlis")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "gizli123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "eski", "gizli123")
	assert.ErrorIs(t, err, ErrUserInactive)

	resp, err := svc.Login(ctx, " kasa1 ", "gizli123")
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, active.ID, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, model.PrivilegesFor(model.RoleCashier), resp.User.Privileges)

	stored, err := users.FindByID(ctx, active.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestAuthService_ChangePassword(t *testing.T) {
	u := newUser(t, "kasa1", "gizli123", model.RoleCashier, true)
	users := newFakeUsers(u)
	svc := NewAuthService(users, jwt.NewManager("s", time.Hour), time.Hour, zap.NewNop())
	ctx := context.Background()
	actor := Actor{UserID: u.ID}

	err := svc.ChangePassword(ctx, actor, &ChangePasswordRequest{OldPassword: "yanlis", NewPassword: "yenisifre"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	err = svc.ChangePassword(ctx, actor, &ChangePasswordRequest{OldPassword: "gizli123", NewPassword: "abc"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, actor, &ChangePasswordRequest{OldPassword: "gizli123", NewPassword: "yenisifre"}))
	_, err = svc.Login(ctx, "kasa1", "yenisifre")
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.SeedAdmin(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	actor := Actor{UserID: admin.ID, Role: model.RoleAdmin}

	cashier, err := svc.Create(ctx, &CreateUserRequest{Username: "kasa2", Password: "gizli123", Role: "kasiyer"}, actor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, cashier.Role)
	assert.True(t, cashier.IsActive)

	_, err = svc.Create(ctx, &CreateUserRequest{Username: "kasa2", Password: "gizli123", Role: "cashier"}, actor)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	_, err = svc.Create(ctx, &CreateUserRequest{Username: "kasa3", Password: "gizli123", Role: "owner"}, actor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.Update(ctx, cashier.ID, patchOf(t, `{"full_name": "Elif", "is_active": false}`), actor)
	require.NoError(t, err)
	assert.Equal(t, "Elif", updated.FullName)
	assert.False(t, updated.IsActive)

	_, err = svc.Update(ctx, admin.ID, patchOf(t, `{"is_active": false}`), actor)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(ctx, admin.ID, patchOf(t, `{"role": "cashier"}`), actor)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, svc.Delete(ctx, admin.ID, actor), ErrInvalidInput)

	require.NoError(t, svc.ResetPassword(ctx, "kasa2", "yeni-sifre"))
	stored, err := users.FindByUsername(ctx, "kasa2")
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("yeni-sifre"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "nobody", "yeni-sifre"), ErrUserNotFound)

	require.NoError(t, svc.Delete(ctx, cashier.ID, actor))
	_, err = svc.Get(ctx, cashier.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
