package config

import (
	"os"
	"strconv"
	"time"

	"dataportal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Session   SessionConfig
	Inference InferenceConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	PreviewRows int
}

// UploadConfig bounds what a single upload may cost
type UploadConfig struct {
	MaxUploadMB         int
	MaxRows             int
	MaxConcurrentParses int
}

// MaxUploadBytes returns the upload limit in bytes
func (u UploadConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) * 1024 * 1024
}

// SessionConfig holds session lifetime settings
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieName    string
	SecureCookie  bool
}

// InferenceConfig tunes column type inference
type InferenceConfig struct {
	NumericThreshold float64
	LenientNumbers   bool
}

// ProfilingConfig holds settings for the operations listener (health, metrics, pprof)
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Upload:    *loadUploadConfig(),
		Session:   *loadSessionConfig(),
		Inference: *loadInferenceConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080", GinMode: "release", PreviewRows: 1000},
		Upload:    UploadConfig{MaxUploadMB: 50, MaxRows: 1_000_000, MaxConcurrentParses: 4},
		Session:   SessionConfig{TTL: 2 * time.Hour, SweepInterval: 5 * time.Minute, CookieName: "dataportal_session"},
		Inference: InferenceConfig{NumericThreshold: 1.0},
		Profiling: ProfilingConfig{Port: "6060", Enabled: true},
		LogLevel:  "INFO",
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 1000),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxUploadMB:         getEnvIntOrDefault("MAX_UPLOAD_MB", 50),
		MaxRows:             getEnvIntOrDefault("MAX_ROWS", 1_000_000),
		MaxConcurrentParses: getEnvIntOrDefault("MAX_CONCURRENT_PARSES", 4),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		TTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
		SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		CookieName:    getEnvOrDefault("SESSION_COOKIE", "dataportal_session"),
		SecureCookie:  getEnvBoolOrDefault("SESSION_COOKIE_SECURE", false),
	}
}

func loadInferenceConfig() *InferenceConfig {
	return &InferenceConfig{
		NumericThreshold: getEnvFloatOrDefault("NUMERIC_THRESHOLD", 1.0),
		LenientNumbers:   getEnvBoolOrDefault("LENIENT_NUMBERS", false),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("OPS_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.PreviewRows < 1 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be at least 1")
	}
	if config.Upload.MaxUploadMB < 1 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be at least 1")
	}
	if config.Upload.MaxRows < 1 {
		return errors.ConfigInvalid("MAX_ROWS must be at least 1")
	}
	if config.Upload.MaxConcurrentParses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_PARSES must be at least 1")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.Session.SweepInterval <= 0 {
		return errors.ConfigInvalid("SESSION_SWEEP_INTERVAL must be positive")
	}
	if config.Inference.NumericThreshold <= 0 || config.Inference.NumericThreshold > 1 {
		return errors.ConfigInvalid("NUMERIC_THRESHOLD must be in (0, 1]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
