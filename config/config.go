package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// TCP listener
	Server ServerConfig

	// JSON data file
	Storage StorageConfig

	// Administrator credentials
	Admin AdminConfig

	// Grading calculator
	Grading GradingConfig

	// Topic generation API
	Topics TopicsConfig

	// Feature Flags
	Features *FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// ServerConfig holds TCP listener settings.
type ServerConfig struct {
	Host string
	Port int

	// Accept and read loops poll with this deadline so they notice
	// shutdown promptly.
	PollInterval time.Duration
}

// StorageConfig holds the data file settings.
type StorageConfig struct {
	// Path of the JSON data file.
	Path string
}

// AdminConfig holds the administrator login.
type AdminConfig struct {
	User     string
	Password string
}

// GradingConfig holds grading calculator settings.
type GradingConfig struct {
	// PluginPath is the optional shared object exporting ComputeFinal.
	// Empty means the built-in weighted formula.
	PluginPath string
}

// TopicsConfig holds topic-generation API settings.
type TopicsConfig struct {
	BaseURL        string
	Model          string
	APIKey         string
	RequestTimeout time.Duration
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App:           loadAppConfig(),
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Admin:         loadAdminConfig(),
		Grading:       loadGradingConfig(),
		Topics:        loadTopicsConfig(),
		Features:      LoadFeatureFlags(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "escola-server"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:         getEnv("SERVER_HOST", "127.0.0.1"),
		Port:         getEnvInt("SERVER_PORT", 65432),
		PollInterval: getEnvDuration("SERVER_POLL_INTERVAL", 500*time.Millisecond),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Path: getEnv("DATA_FILE", "dados.json"),
	}
}

func loadAdminConfig() AdminConfig {
	return AdminConfig{
		User:     getEnv("ADMIN_USER", "admin"),
		Password: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func loadGradingConfig() GradingConfig {
	return GradingConfig{
		PluginPath: getEnv("GRADING_PLUGIN_PATH", ""),
	}
}

func loadTopicsConfig() TopicsConfig {
	return TopicsConfig{
		BaseURL:        getEnv("TOPICS_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Model:          getEnv("TOPICS_MODEL", "gemini-1.5-flash"),
		APIKey:         getEnv("GEMINI_API_KEY", ""),
		RequestTimeout: getEnvDuration("TOPICS_REQUEST_TIMEOUT", 15*time.Second),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be 1-65535")
	}
	if c.Server.PollInterval <= 0 {
		errs = append(errs, "SERVER_POLL_INTERVAL must be positive")
	}
	if c.Storage.Path == "" {
		errs = append(errs, "DATA_FILE must not be empty")
	}
	if c.Admin.User == "" || c.Admin.Password == "" {
		errs = append(errs, "ADMIN_USER and ADMIN_PASSWORD must not be empty")
	}
	if c.Features.EnableAITopics && c.Topics.APIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required when FEATURE_AI_TOPICS is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
