package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OAuth    OAuthConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Env  string
	Port string
	Host string
}

type StoreConfig struct {
	// Backend is one of memory, bolt, postgres
	Backend string
	// BoltPath is the database file for the bolt backend
	BoltPath string
	// StrictFeedback rejects feedback against unknown video ids
	StrictFeedback bool
	// SeedSampleData loads the starter catalog into an empty store
	SeedSampleData bool
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackHost       string
}

type AdminConfig struct {
	// EmailDomain marks signed-in users as admins by email suffix.
	// Advisory only; it unlocks the admin UI, nothing more.
	EmailDomain string
}

// Load reads environment variables and returns a Config struct
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("APP_ENV", "local"),
			Port: getEnv("PORT", "4000"),
			Host: getEnv("HOST", "http://localhost:4000"),
		},
		Store: StoreConfig{
			Backend:        getEnv("STORE_BACKEND", BackendBolt),
			BoltPath:       getEnv("BOLT_PATH", "catalog.db"),
			StrictFeedback: getEnv("FEEDBACK_STRICT", "false") == "true",
			SeedSampleData: getEnv("SEED_SAMPLE_DATA", "false") == "true",
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			CallbackHost:       getEnv("HOST", "http://localhost:4000"),
		},
		Admin: AdminConfig{
			EmailDomain: getEnv("ADMIN_EMAIL_DOMAIN", "@cypheruni.com"),
		},
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendBolt:
	case BackendPostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
