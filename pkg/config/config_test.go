package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")

	v := viper.New()
	v.Set("PORT", "3000")
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "Europe/Istanbul", cfg.DBTimeZone)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("DATABASE_URL", "postgres://pos:pos@db:5432/pos")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "postgres://pos:pos@db:5432/pos", cfg.DSN())
}

func TestValidate_Production(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "default secret rejected",
			cfg:     Config{Port: "3000", TokenTTL: time.Hour, Environment: "production", JWTSecret: defaultJWTSecret, AdminPassword: "s3cret-pass"},
			wantErr: true,
		},
		{
			name:    "default admin password rejected",
			cfg:     Config{Port: "3000", TokenTTL: time.Hour, Environment: "production", JWTSecret: "0123456789abcdef0123456789abcdef", AdminPassword: "admin123"},
			wantErr: true,
		},
		{
			name: "hardened config accepted",
			cfg:  Config{Port: "3000", TokenTTL: time.Hour, Environment: "production", JWTSecret: "0123456789abcdef0123456789abcdef", AdminPassword: "s3cret-pass"},
		},
		{
			name: "development allows defaults",
			cfg:  Config{Port: "3000", TokenTTL: time.Hour, Environment: "development", JWTSecret: defaultJWTSecret, AdminPassword: "admin123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDSN_FromParts(t *testing.T) {
	cfg := Config{DBHost: "h", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBTimeZone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5433 sslmode=disable TimeZone=UTC", cfg.DSN())
}
