package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Host stream kinds.
const (
	HostStreamMemory = "memory"
	HostStreamRedis  = "redis"
)

// Config aggregates runtime configuration for the dashboard.
type Config struct {
	App     AppConfig
	Gateway GatewayConfig
	Store   StoreConfig
	Host    HostConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Form    FormConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicURL             string
	RequestTimeoutSeconds int
}

// GatewayConfig points at the PSA backend.
type GatewayConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StoreConfig tunes the ticket store.
type StoreConfig struct {
	DiscardStaleFetches bool
}

// HostConfig configures the embedding host context bridge.
type HostConfig struct {
	Stream           string
	RedisChannel     string
	ContextTimeoutMS int
	ContextSecret    string
	TokenTTLMinutes  int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// FormConfig holds create-form defaults.
type FormConfig struct {
	DefaultClientID string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	stream := strings.ToLower(getEnv("HOST_STREAM", HostStreamMemory))
	if stream != HostStreamMemory && stream != HostStreamRedis {
		return nil, fmt.Errorf("invalid HOST_STREAM %q: want %s or %s", stream, HostStreamMemory, HostStreamRedis)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicURL:             getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Gateway: GatewayConfig{
			BaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000"), "/"),
			TimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 15),
		},
		Store: StoreConfig{
			DiscardStaleFetches: getEnvAsBool("STORE_DISCARD_STALE_FETCHES", false),
		},
		Host: HostConfig{
			Stream:           stream,
			RedisChannel:     getEnv("HOST_REDIS_CHANNEL", "front:context"),
			ContextTimeoutMS: getEnvAsInt("HOST_CONTEXT_TIMEOUT_MS", 3000),
			ContextSecret:    os.Getenv("HOST_CONTEXT_SECRET"),
			TokenTTLMinutes:  getEnvAsInt("HOST_TOKEN_TTL_MINUTES", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Form: FormConfig{
			DefaultClientID: getEnv("DEFAULT_CLIENT_ID", "123e4567-e89b-12d3-a456-426614174000"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single backend call. Zero disables the bound.
func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ContextTimeout is how long the bridge waits for the first host snapshot.
func (h HostConfig) ContextTimeout() time.Duration {
	if h.ContextTimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(h.ContextTimeoutMS) * time.Millisecond
}

// UsesRedis reports whether host snapshots travel over Redis pub/sub.
func (h HostConfig) UsesRedis() bool {
	return h.Stream == HostStreamRedis
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
