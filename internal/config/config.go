package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Collaborators CollaboratorsConfig
	Logging       LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
	CORSOrigin      string
	EnableSwagger   bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	SlowQueryThreshold  time.Duration
	HealthCheckInterval time.Duration
	HealthTimeout       time.Duration
	MigrationsPath      string
	MaxRetryAttempts    int
}

// CacheConfig holds cache configuration for collaborator lookups
type CacheConfig struct {
	Provider   string // memory, redis
	RedisURL   string
	DefaultTTL time.Duration
	KeyPrefix  string
}

// CollaboratorsConfig locates the sibling services the achievement engine reads from
type CollaboratorsConfig struct {
	UsersURL             string
	SessionsURL          string
	RoutesURL            string
	StatusesURL          string
	RequestTimeout       time.Duration
	MaxConcurrentLookups int
	RegionCacheTTL       time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load reads the environment (and an optional .env file) into a Config
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:        loadServerConfig(env),
		Database:      loadDatabaseConfig(env),
		Cache:         loadCacheConfig(),
		Collaborators: loadCollaboratorsConfig(),
		Logging:       loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		ServerName:      getEnv("SERVER_NAME", "condor-achievements"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
		EnableSwagger:   getBoolEnv("ENABLE_SWAGGER", env != "production"),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", ""),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		HealthTimeout:       getDurationEnv("DB_HEALTH_TIMEOUT", healthTimeoutForEnv(env)),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "./internal/database/migrations"),
		MaxRetryAttempts:    getIntEnv("DB_MAX_RETRY_ATTEMPTS", 3),
	}

	if config.MaxIdleConns > config.MaxOpenConns {
		config.MaxIdleConns = config.MaxOpenConns
	}

	return config
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:   getEnv("CACHE_PROVIDER", "memory"),
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 10*time.Minute),
		KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "condor:achievements:"),
	}
}

func loadCollaboratorsConfig() CollaboratorsConfig {
	return CollaboratorsConfig{
		UsersURL:             getEnv("USERS_SERVICE_URL", "http://localhost:8081/api/v1/usuarios"),
		SessionsURL:          getEnv("ROUTE_SESSIONS_SERVICE_URL", "http://localhost:8082/api/v1/iniciar-rutas"),
		RoutesURL:            getEnv("ROUTES_SERVICE_URL", "http://localhost:8083/api/v1/rutas"),
		StatusesURL:          getEnv("STATUSES_SERVICE_URL", "http://localhost:8081/api/v1/estados"),
		RequestTimeout:       getDurationEnv("COLLABORATOR_TIMEOUT", 3*time.Second),
		MaxConcurrentLookups: getIntEnv("COLLABORATOR_MAX_CONCURRENT_LOOKUPS", 8),
		RegionCacheTTL:       getDurationEnv("ROUTE_REGION_CACHE_TTL", time.Hour),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	format := "console"
	if env == "production" {
		format = "json"
	}
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", format),
	}
}

func healthTimeoutForEnv(env string) time.Duration {
	switch env {
	case "production":
		return 60 * time.Second
	case "staging":
		return 45 * time.Second
	default:
		return 30 * time.Second
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate checks every section of the configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	if err := c.Collaborators.Validate(); err != nil {
		return fmt.Errorf("collaborators config: %w", err)
	}
	return nil
}

// Validate validates database configuration
func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis provider")
		}
	default:
		return fmt.Errorf("unsupported cache provider: %s", c.Provider)
	}
	return nil
}

// Validate validates collaborator endpoints and limits
func (c *CollaboratorsConfig) Validate() error {
	endpoints := map[string]string{
		"USERS_SERVICE_URL":          c.UsersURL,
		"ROUTE_SESSIONS_SERVICE_URL": c.SessionsURL,
		"ROUTES_SERVICE_URL":         c.RoutesURL,
		"STATUSES_SERVICE_URL":       c.StatusesURL,
	}
	for key, raw := range endpoints {
		if raw == "" {
			return fmt.Errorf("%s is required", key)
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", key, err)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("COLLABORATOR_TIMEOUT must be positive")
	}
	if c.MaxConcurrentLookups <= 0 {
		return fmt.Errorf("COLLABORATOR_MAX_CONCURRENT_LOOKUPS must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
