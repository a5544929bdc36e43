package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development defaults. Load refuses to start a prod deployment with either of them.
const (
	DevSecretKey      = "dev-secret-change-me-0123456789a"
	DevGoogleClientID = "local-dev.apps.googleusercontent.com"

	DefaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type StoreConfig struct {
	Driver string // memory, mongo or postgres
}

type MongoConfig struct {
	URI      string
	Database string
	// UsersCollection can point at an existing accounts collection whose
	// documents store a bcrypt hash under "password".
	UsersCollection string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// SecretKey signs session tokens. PASETO v4.local needs exactly 32 bytes.
	SecretKey      []byte
	TokenFormat    string
	GoogleClientID string
	GoogleJWKSURL  string

	// Optional account created at startup for local testing.
	SeedUserEmail    string
	SeedUserPassword string
}

type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8000"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreMemory),
		},
		Mongo: MongoConfig{
			URI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:        getEnv("MONGO_DB", "placereviews"),
			UsersCollection: getEnv("MONGO_USERS_COLLECTION", "users"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "placereviews"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			SecretKey:        []byte(getEnv("SECRET_KEY", DevSecretKey)),
			TokenFormat:      getEnv("TOKEN_FORMAT", TokenFormatJWT),
			GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", DevGoogleClientID),
			GoogleJWKSURL:    getEnv("GOOGLE_JWKS_URL", DefaultGoogleJWKSURL),
			SeedUserEmail:    getEnv("SEED_USER_EMAIL", ""),
			SeedUserPassword: getEnv("SEED_USER_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: getIntEnv("RATE_LIMIT_MAX_ATTEMPTS", 10),
			Window:      getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted safely.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Auth.TokenFormat {
	case TokenFormatJWT:
		if len(c.Auth.SecretKey) == 0 {
			return errors.New("SECRET_KEY must not be empty")
		}
	case TokenFormatPaseto:
		if len(c.Auth.SecretKey) != 32 {
			return fmt.Errorf("SECRET_KEY must be exactly 32 bytes for paseto, got %d", len(c.Auth.SecretKey))
		}
	default:
		return fmt.Errorf("unknown TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	if c.Auth.GoogleClientID == "" {
		return errors.New("GOOGLE_CLIENT_ID must not be empty")
	}

	if (c.Auth.SeedUserEmail == "") != (c.Auth.SeedUserPassword == "") {
		return errors.New("SEED_USER_EMAIL and SEED_USER_PASSWORD must be set together")
	}

	if !c.Server.IsDevelopment() {
		if string(c.Auth.SecretKey) == DevSecretKey {
			return errors.New("SECRET_KEY must be overridden outside development")
		}
		if c.Auth.GoogleClientID == DevGoogleClientID {
			return errors.New("GOOGLE_CLIENT_ID must be overridden outside development")
		}
		if c.Store.Driver == StoreMemory {
			return errors.New("memory store is only allowed in development")
		}
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv reads a whole number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
