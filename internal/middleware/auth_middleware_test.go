package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userMap map[uuid.UUID]*model.User

func (m userMap) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func TestRequireAuthAndPrivilege(t *testing.T) {
	tokens := jwt.NewManager("middleware-test-secret", time.Hour)

	cashier := &model.User{Username: "kasa1", Role: model.RoleCashier, IsActive: true}
	cashier.ID = uuid.New()
	admin := &model.User{Username: "admin", Role: model.RoleAdmin, IsActive: true}
	admin.ID = uuid.New()
	disabled := &model.User{Username: "eski", Role: model.RoleAdmin, IsActive: false}
	disabled.ID = uuid.New()
	users := userMap{cashier.ID: cashier, admin.ID: admin, disabled.ID: disabled}

	app := fiber.New()
	app.Get("/stock", RequireAuth(tokens, users), RequirePrivilege(model.PrivStockMove), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserName).(string))
	})

	tokenFor := func(u *model.User) string {
		tok, err := tokens.GenerateToken(u.ID, u.Username, u.Username, string(u.Role))
		require.NoError(t, err)
		return "Bearer " + tok
	}
	ghost := &model.User{Username: "ghost", Role: model.RoleAdmin}
	ghost.ID = uuid.New()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", tokenFor(ghost), http.StatusUnauthorized},
		{"inactive user", tokenFor(disabled), http.StatusUnauthorized},
		{"cashier lacks privilege", tokenFor(cashier), http.StatusForbidden},
		{"admin", tokenFor(admin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stock", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
