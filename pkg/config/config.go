package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting for the api server and posctl.
type Config struct {
	AppName     string
	Environment string
	Port        string
	CORSOrigins string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBTimeZone  string
	DBLogLevel  string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel string

	AdminUsername string
	AdminPassword string
}

const defaultJWTSecret = "change-me-in-production"

// Load reads .env (if present) and the process environment into a Config.
// A nil viper instance means a fresh one is created.
func Load(v *viper.Viper) (*Config, error) {
	// .env is optional, real env vars always win
	_ = godotenv.Load()

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		AppName:       v.GetString("APP_NAME"),
		Environment:   strings.ToLower(v.GetString("APP_ENV")),
		Port:          v.GetString("PORT"),
		CORSOrigins:   v.GetString("CORS_ORIGINS"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBTimeZone:    v.GetString("DB_TIMEZONE"),
		DBLogLevel:    strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Malatya POS v1.0")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pos")
	v.SetDefault("DB_TIMEZONE", "Europe/Istanbul")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Validate rejects settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL_HOURS must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("config: JWT_SECRET must be set to at least 32 characters in production")
		}
		if c.AdminPassword == "admin123" {
			return errors.New("config: ADMIN_PASSWORD must be changed in production")
		}
	}
	return nil
}

// DSN returns DATABASE_URL, or builds a key/value DSN from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBTimeZone,
	)
}

// Location is the shop's business-day timezone, UTC if DB_TIMEZONE is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DBTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
