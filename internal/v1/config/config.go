package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds validated environment configuration
type Config struct {
	Host string
	Port string

	// Comma-separated origin allow-list; empty allows everything.
	AllowedOrigins string

	// Persistence. Empty REDIS_ADDR disables the adapter entirely.
	RedisAddr     string
	RedisPassword string

	// Optional path to a TOML file overriding gameplay constants.
	GameConfigPath string

	// Tracing is enabled only when an OTLP endpoint is present.
	OTLPEndpoint string

	LogLevel        string
	DevelopmentMode bool

	// Rate limits in ulule/limiter notation (M = minute, H = hour)
	RateLimitWsIp  string
	RateLimitWsMsg string

	ShutdownTimeout time.Duration
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// PersistenceEnabled reports whether the Redis adapter should be wired.
func (c *Config) PersistenceEnabled() bool {
	return c.RedisAddr != ""
}

// ValidateEnv validates all environment variables and returns a Config object.
// Returns an error listing every invalid variable rather than stopping at the
// first one.
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Optional: HOST (defaults to all interfaces)
	cfg.Host = getEnvOrDefault("HOST", "0.0.0.0")

	// Optional: PORT (defaults to 3001, must be a valid port when set)
	cfg.Port = getEnvOrDefault("PORT", "3001")
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
	}

	// Optional: REDIS_ADDR (format: host:port; absence disables persistence)
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr != "" && !isValidHostPort(cfg.RedisAddr) {
		errors = append(errors, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got '%s')", cfg.RedisAddr))
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	// Optional: GAME_CONFIG (must exist when set)
	cfg.GameConfigPath = os.Getenv("GAME_CONFIG")
	if cfg.GameConfigPath != "" {
		if _, err := os.Stat(cfg.GameConfigPath); err != nil {
			errors = append(errors, fmt.Sprintf("GAME_CONFIG file not readable: %v", err))
		}
	}

	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")

	// Rate Limits (Defaults: M = Minute)
	cfg.RateLimitWsIp = getEnvOrDefault("RATE_LIMIT_WS_IP", "60-M")
	cfg.RateLimitWsMsg = getEnvOrDefault("RATE_LIMIT_WS_MSG", "1200-M")

	// Optional: SHUTDOWN_TIMEOUT (defaults to 10s)
	rawTimeout := getEnvOrDefault("SHUTDOWN_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil || timeout <= 0 {
		errors = append(errors, fmt.Sprintf("SHUTDOWN_TIMEOUT must be a positive duration (got '%s')", rawTimeout))
	} else {
		cfg.ShutdownTimeout = timeout
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	logValidatedConfig(cfg)

	return cfg, nil
}

// isValidHostPort checks if a string is in the format "host:port"
func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return false
	}

	if parts[0] == "" {
		return false
	}

	return true
}

// logValidatedConfig logs the validated configuration with secrets redacted
func logValidatedConfig(cfg *Config) {
	slog.Info("✅ Environment configuration validated successfully")
	slog.Info("Configuration",
		"host", cfg.Host,
		"port", cfg.Port,
		"allowed_origins", cfg.AllowedOrigins,
		"redis_addr", cfg.RedisAddr,
		"redis_password", redactSecret(cfg.RedisPassword),
		"game_config", cfg.GameConfigPath,
		"otlp_endpoint", cfg.OTLPEndpoint,
		"log_level", cfg.LogLevel,
		"development_mode", cfg.DevelopmentMode,
		"rate_limit_ws_ip", cfg.RateLimitWsIp,
		"rate_limit_ws_msg", cfg.RateLimitWsMsg,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// redactSecret redacts a secret by showing only the first 8 characters
func redactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
