package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rahul4469/propmate/internal/models"
)

// Setting names read from the environment / .env file.
const (
	OpenAIAPIKeyName  = "OPENAI_API_KEY"
	OpenAIModelName   = "OPENAI_MODEL"
	OpenAIBaseURLName = "OPENAI_BASE_URL"
	TavilyAPIKeyName  = "TAVILY_API_KEY"
	TavilyBaseURLName = "TAVILY_BASE_URL"
)

const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultTavilyBaseURL = "https://api.tavily.com"
)

type Config struct {
	// Server config
	Server ServerConfig

	// cookie signing and CSRF
	Security SecurityConfig

	// provider settings, resolved per call
	APIs Source

	// rate limiting and session lifetime
	Limits LimitsConfig

	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string
	Environment  string // development, staging, production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	SessionHashKey    string
	SessionCookieName string
	CSRFKey           string // empty disables CSRF protection
	SecureCookies     bool   // true in production
}

// LimitsConfig holds rate limiting and session lifetime settings.
type LimitsConfig struct {
	RequestsPerMinute  int
	Burst              int
	SessionIdleTimeout time.Duration
}

// LoggingConfig selects the zap level.
type LoggingConfig struct {
	Level string
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

var loadEnvOnce sync.Once

// LoadEnvFile reads .env into the process environment the first time it is
// called. Values already present in the environment are never overridden and a
// missing file is not an error.
func LoadEnvFile() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Resolve reads a named setting. A required setting that is absent or empty
// fails with a ConfigError naming it; optional ones fall back to def.
func Resolve(name string, required bool, def string) (string, error) {
	LoadEnvFile()

	val := os.Getenv(name)
	if val == "" {
		val = def
	}
	if required && val == "" {
		return "", models.NewConfigError(name)
	}
	return val, nil
}

func Load() (*Config, error) {
	LoadEnvFile()

	cfg := &Config{APIs: Env{}}

	// Load server configuration
	cfg.Server = ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		// Covers an inline offer fetch: search plus extraction timeouts.
		WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
	}

	cfg.Security = SecurityConfig{
		SessionHashKey:    os.Getenv("SESSION_HASH_KEY"),
		SessionCookieName: getEnvOrDefault("SESSION_COOKIE_NAME", "propmate_session"),
		CSRFKey:           os.Getenv("CSRF_KEY"),
		SecureCookies:     cfg.Server.Environment == "production",
	}

	perMinute, err := strconv.Atoi(getEnvOrDefault("RATE_LIMIT_PER_MINUTE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	burst, err := strconv.Atoi(getEnvOrDefault("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg.Limits = LimitsConfig{
		RequestsPerMinute:  perMinute,
		Burst:              burst,
		SessionIdleTimeout: getDurationOrDefault("SESSION_IDLE_TIMEOUT", 2*time.Hour),
	}

	cfg.Logging = LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the server settings. Provider keys are deliberately absent:
// they are resolved per call so a missing key degrades one feature instead of
// refusing to start.
func (c *Config) validate() error {
	var errs []error

	if c.Security.CSRFKey != "" && len(c.Security.CSRFKey) < 32 {
		errs = append(errs, errors.New("CSRF_KEY must be at least 32 characters"))
	}

	if c.Security.SessionHashKey != "" && len(c.Security.SessionHashKey) < 32 {
		errs = append(errs, errors.New("SESSION_HASH_KEY must be at least 32 characters"))
	}

	if c.Limits.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}

	if c.Limits.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the .env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
