// Package config holds tuning constants and the environment-driven runtime
// configuration of the server and admin CLI.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// WebSocket
	WriteWait       = 10 * time.Second
	PongWait        = 60 * time.Second
	PingPeriod      = (PongWait * 9) / 10
	MaxFrameSize    = 8 * 1024
	ReadBufferSize  = 1024
	WriteBufferSize = 1024

	// Paging
	DefaultPageSize = 10
	MaxPageSize     = 50

	// Defaults for environment values
	DefaultHTTPAddr         = ":8080"
	DefaultMaxMessageLength = 2000
	DefaultPresenceShards   = 32
	DefaultClientBuffer     = 256
	DefaultTokenTTL         = 72 * time.Hour
	DefaultRedisAddr        = "localhost:6380"
	TokenIssuer             = "lovechat-service"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the runtime configuration read from the environment.
type Config struct {
	HTTPAddr string

	DBDriver    string
	DatabaseDSN string

	// RedisAddr is optional; an empty value disables last-active tracking.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	MaxMessageLength int
	PresenceShards   int
	ClientBuffer     int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", DefaultHTTPAddr),
		DBDriver:      getEnv("DB_DRIVER", DriverPostgres),
		RedisAddr:     getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.MaxMessageLength, err = getInt("MAX_MESSAGE_LENGTH", DefaultMaxMessageLength); err != nil {
		return nil, err
	}
	if cfg.PresenceShards, err = getInt("PRESENCE_SHARDS", DefaultPresenceShards); err != nil {
		return nil, err
	}
	if cfg.ClientBuffer, err = getInt("CLIENT_BUFFER", DefaultClientBuffer); err != nil {
		return nil, err
	}

	cfg.TokenTTL = DefaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if cfg.TokenTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				getEnv("DB_HOST", "localhost"),
				getEnv("DB_USER", "user"),
				getEnv("DB_PASSWORD", "password"),
				getEnv("DB_NAME", "lovechatdb"),
				getEnv("DB_PORT", "5432"),
			)
		}
	case DriverSQLite:
		cfg.DatabaseDSN = getEnv("DATABASE_DSN", "lovechat.db")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.MaxMessageLength <= 0 {
		return nil, fmt.Errorf("MAX_MESSAGE_LENGTH must be positive")
	}
	if cfg.PresenceShards <= 0 {
		return nil, fmt.Errorf("PRESENCE_SHARDS must be positive")
	}
	if cfg.ClientBuffer <= 0 {
		return nil, fmt.Errorf("CLIENT_BUFFER must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
