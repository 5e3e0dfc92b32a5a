package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Catalog    CatalogConfig
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Dialog     DialogConfig

	// Warnings lists environment values that were invalid and replaced by
	// their defaults. Load runs before the logger exists, so the caller logs them.
	Warnings []string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds configuration for the utterance parser's completion endpoint
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	Timeout         int // seconds
	Enabled         bool
}

// CatalogConfig selects and configures the product catalog source
type CatalogConfig struct {
	Source   string // "fakestore" or "postgres"
	URL      string
	Timeout  int // seconds
	CacheTTL int // seconds, used when Redis is enabled
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence over the discrete fields
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the catalog cache connection settings
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

// DialogConfig controls multi-turn behaviour
type DialogConfig struct {
	CarryOver bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:           env.getEnvAsInt("SERVER_PORT", 5000),
			Host:           env.getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        env.getEnv("GIN_MODE", "release"),
			AllowedOrigins: splitList(env.getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		},
		Logging: LoggingConfig{
			Level:  env.getEnv("LOG_LEVEL", "info"),
			Format: env.getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          env.getEnv("OPENAI_API_KEY", ""),
			APIBase:         strings.TrimRight(env.getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:       env.getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: env.getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.1),
			ChatMaxTokens:   env.getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 256),
			Timeout:         env.getEnvAsInt("OPENAI_TIMEOUT", 10),
			Enabled:         env.getEnv("OPENAI_API_KEY", "") != "",
		},
		Catalog: CatalogConfig{
			Source:   strings.ToLower(env.getEnv("CATALOG_SOURCE", "fakestore")),
			URL:      env.getEnv("CATALOG_URL", "https://fakestoreapi.com/products"),
			Timeout:  env.getEnvAsInt("CATALOG_TIMEOUT", 10),
			CacheTTL: env.getEnvAsInt("CATALOG_CACHE_TTL", 300),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                env.getEnv("DATABASE_URL", env.getEnv("PG_DSN", "")),
			Host:               env.getEnv("PG_HOST", "localhost"),
			Port:               env.getEnvAsInt("PG_PORT", 5432),
			User:               env.getEnv("PG_USER", "postgres"),
			Password:           env.getEnv("PG_PASSWORD", ""),
			Database:           env.getEnv("PG_DATABASE", "voiceshop"),
			SSLMode:            env.getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     env.getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: env.getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			Enabled:  env.getEnvAsBool("REDIS_ENABLED", false),
			Address:  env.getEnv("REDIS_ADDR", "localhost:6379"),
			Password: env.getEnv("REDIS_PASSWORD", ""),
			DB:       env.getEnvAsInt("REDIS_DB", 0),
		},
		Dialog: DialogConfig{
			CarryOver: env.getEnvAsBool("DIALOG_CARRY_OVER", true),
		},
	}

	cfg.Warnings = env.warnings

	if cfg.Catalog.Source != "fakestore" && cfg.Catalog.Source != "postgres" {
		return nil, fmt.Errorf("invalid CATALOG_SOURCE %q, must be fakestore or postgres", cfg.Catalog.Source)
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// OpenAITimeout returns the bounded wait for one completion call
func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.Timeout) * time.Second
}

// CatalogTimeout returns the bounded wait for one catalog fetch
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.Timeout) * time.Second
}

// CatalogCacheTTL returns how long a fetched catalog stays in Redis
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTL) * time.Second
}

// envReader reads typed values and records the ones it had to replace.
type envReader struct {
	warnings []string
}

func (e *envReader) getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (e *envReader) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.warnf("invalid integer value %q for %s, using default %d", valueStr, key, defaultValue)
		return defaultValue
	}
	return value
}

func (e *envReader) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		e.warnf("invalid float value %q for %s, using default %g", valueStr, key, defaultValue)
		return defaultValue
	}
	return value
}

func (e *envReader) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.warnf("invalid bool value %q for %s, using default %t", valueStr, key, defaultValue)
		return defaultValue
	}
	return value
}

func (e *envReader) warnf(format string, args ...interface{}) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
