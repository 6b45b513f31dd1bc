package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config is the full runtime configuration of the API.
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Reporting ReportingConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// DatabaseConfig holds either a full DATABASE_URL or the discrete connection parts.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig also carries the owner account seeded on first start.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// CacheConfig configures the report cache. An empty RedisAddr disables Redis.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ReportTTL     time.Duration
}

type ReportingConfig struct {
	Timezone          string
	ClosingCron       string
	LowStockThreshold int
}

// Load reads the environment (and .env when present) into a Config.
func Load() (*Config, error) {
	// A missing .env is fine, configuration can come from the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "cashflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
			TokenTTL:      time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@cashflow.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			ReportTTL:     time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 30)) * time.Second,
		},
		Reporting: ReportingConfig{
			Timezone:          getEnv("TIMEZONE", "America/Sao_Paulo"),
			ClosingCron:       getEnv("CLOSING_CRON", "0 22 * * *"),
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.Reporting.ClosingCron); err != nil {
		return fmt.Errorf("invalid CLOSING_CRON %q: %w", c.Reporting.ClosingCron, err)
	}
	if c.Reporting.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.Env == "production" && len(c.Auth.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be set and at least 32 characters in production")
	}
	if c.Env == "production" && c.Auth.AdminPassword == "admin123" {
		return errors.New("ADMIN_PASSWORD must be changed in production")
	}
	return nil
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Location resolves the reporting timezone, falling back to UTC.
func (r ReportingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s ServerConfig) Address() string {
	return ":" + s.Port
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}
