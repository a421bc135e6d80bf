package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	CORS     CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// APIConfig points at the employee REST backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	Type string
	Path string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	URL string
}

type SessionConfig struct {
	RestoreMode         string
	ClockSkew           time.Duration
	SweepInterval       time.Duration
	LogoutOnAuthFailure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads the environment, with values from a .env file if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Backend API configuration
	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	config.API = APIConfig{
		BaseURL: getEnv("API_BASE_URL", "http://localhost:5000/api"),
		Timeout: apiTimeout,
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type: strings.ToLower(getEnv("STORAGE_TYPE", "file")),
		Path: getEnv("STORAGE_PATH", "./data"),
	}

	// Database configuration, only used with STORAGE_TYPE=postgres
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "employee_directory"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Redis = RedisConfig{
		URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
	}

	// Session configuration
	clockSkew, err := time.ParseDuration(getEnv("SESSION_CLOCK_SKEW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_CLOCK_SKEW: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("SESSION_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}
	logoutOnAuthFailure, err := getEnvBool("LOGOUT_ON_AUTH_FAILURE", false)
	if err != nil {
		return nil, err
	}

	config.Session = SessionConfig{
		RestoreMode:         strings.ToLower(getEnv("SESSION_RESTORE_MODE", "trust")),
		ClockSkew:           clockSkew,
		SweepInterval:       sweepInterval,
		LogoutOnAuthFailure: logoutOnAuthFailure,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	switch c.Storage.Type {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("STORAGE_PATH is required for STORAGE_TYPE=%s", c.Storage.Type)
		}
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for STORAGE_TYPE=postgres")
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for STORAGE_TYPE=redis")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}

	switch c.Session.RestoreMode {
	case "trust":
	case "expiry":
		if c.Session.SweepInterval <= 0 {
			return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
		}
	default:
		return fmt.Errorf("unsupported SESSION_RESTORE_MODE %q", c.Session.RestoreMode)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
