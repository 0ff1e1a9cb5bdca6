// Package config loads server configuration from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/CreativeUnicorns/recruitprefs"
)

// Environment variable names.
const (
	EnvListenAddress     = "RECRUITPREFS_LISTEN_ADDR"
	EnvLogLevel          = "RECRUITPREFS_LOG_LEVEL"
	EnvStorageDriver     = "RECRUITPREFS_STORAGE"
	EnvSQLitePath        = "RECRUITPREFS_SQLITE_PATH"
	EnvPostgresDSN       = "RECRUITPREFS_POSTGRES_DSN"
	EnvCacheDriver       = "RECRUITPREFS_CACHE"
	EnvCacheTTL          = "RECRUITPREFS_CACHE_TTL"
	EnvRedisAddr         = "RECRUITPREFS_REDIS_ADDR"
	EnvRedisPassword     = "RECRUITPREFS_REDIS_PASSWORD"
	EnvRedisDB           = "RECRUITPREFS_REDIS_DB"
	EnvRateLimiter       = "RECRUITPREFS_RATE_LIMITER"
	EnvRateLimitMax      = "RECRUITPREFS_RATE_LIMIT_MAX"
	EnvRateLimitWindow   = "RECRUITPREFS_RATE_LIMIT_WINDOW"
	EnvRateLimitCooldown = "RECRUITPREFS_RATE_LIMIT_COOLDOWN"
	EnvSessionTTL        = "RECRUITPREFS_SESSION_TTL"
	EnvEncrypt           = "RECRUITPREFS_ENCRYPT"
	EnvDiscordWebhook    = "RECRUITPREFS_DISCORD_WEBHOOK_URL"
	EnvCatalogPath       = "RECRUITPREFS_CATALOG"
	EnvAdminToken        = "RECRUITPREFS_ADMIN_TOKEN"
)

// Config is the full server configuration.
type Config struct {
	ListenAddress string `validate:"required"`
	LogLevel      string `validate:"oneof=debug info warn error"`

	StorageDriver string `validate:"oneof=memory sqlite postgres"`
	SQLitePath    string `validate:"required_if=StorageDriver sqlite"`
	PostgresDSN   string `validate:"required_if=StorageDriver postgres"`

	CacheDriver   string        `validate:"oneof=none memory redis"`
	CacheTTL      time.Duration `validate:"gte=0"`
	RedisAddr     string        `validate:"required_if=CacheDriver redis,required_if=RateLimiter redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	RateLimiter       string        `validate:"oneof=none memory redis"`
	RateLimitMax      int           `validate:"gt=0"`
	RateLimitWindow   time.Duration `validate:"gt=0"`
	RateLimitCooldown time.Duration `validate:"gte=0"`

	SessionTTL time.Duration `validate:"gte=0"`

	Encrypt           bool
	DiscordWebhookURL string `validate:"omitempty,url"`
	CatalogPath       string
	AdminToken        string `validate:"omitempty,min=16"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		ListenAddress:     ":8080",
		LogLevel:          "info",
		StorageDriver:     "memory",
		SQLitePath:        "recruitprefs.db",
		CacheDriver:       "memory",
		CacheTTL:          24 * time.Hour,
		RedisAddr:         "localhost:6379",
		RateLimiter:       "memory",
		RateLimitMax:      5,
		RateLimitWindow:   time.Hour,
		RateLimitCooldown: 30 * time.Second,
		SessionTTL:        30 * time.Minute,
	}
}

// LoadEnv loads variables from the given files (default ".env") into the process
// environment. Variables already set in the process are not overridden. Missing
// files are skipped.
func LoadEnv(logger recruitprefs.Logger, files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.Warn("Failed to load env file", "file", file, "error", err)
			}
			continue
		}
		loaded = append(loaded, file)
	}

	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
	} else {
		logger.Debug("Loaded env files", "files", strings.Join(loaded, ", "))
	}
}

// Load reads the configuration from the environment on top of Default and validates it.
func Load() (Config, error) {
	def := Default()
	cfg := Config{
		ListenAddress:     GetEnv(EnvListenAddress, def.ListenAddress),
		LogLevel:          strings.ToLower(GetEnv(EnvLogLevel, def.LogLevel)),
		StorageDriver:     strings.ToLower(GetEnv(EnvStorageDriver, def.StorageDriver)),
		SQLitePath:        GetEnv(EnvSQLitePath, def.SQLitePath),
		PostgresDSN:       GetEnv(EnvPostgresDSN, def.PostgresDSN),
		CacheDriver:       strings.ToLower(GetEnv(EnvCacheDriver, def.CacheDriver)),
		CacheTTL:          GetEnvDuration(EnvCacheTTL, def.CacheTTL),
		RedisAddr:         GetEnv(EnvRedisAddr, def.RedisAddr),
		RedisPassword:     GetEnv(EnvRedisPassword, def.RedisPassword),
		RedisDB:           GetEnvInt(EnvRedisDB, def.RedisDB),
		RateLimiter:       strings.ToLower(GetEnv(EnvRateLimiter, def.RateLimiter)),
		RateLimitMax:      GetEnvInt(EnvRateLimitMax, def.RateLimitMax),
		RateLimitWindow:   GetEnvDuration(EnvRateLimitWindow, def.RateLimitWindow),
		RateLimitCooldown: GetEnvDuration(EnvRateLimitCooldown, def.RateLimitCooldown),
		SessionTTL:        GetEnvDuration(EnvSessionTTL, def.SessionTTL),
		Encrypt:           GetEnvBool(EnvEncrypt, def.Encrypt),
		DiscordWebhookURL: GetEnv(EnvDiscordWebhook, def.DiscordWebhookURL),
		CatalogPath:       GetEnv(EnvCatalogPath, def.CatalogPath),
		AdminToken:        GetEnv(EnvAdminToken, def.AdminToken),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every invalid field at once.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvDuration gets a time.Duration environment variable (e.g. "30s", "1h") with a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}
