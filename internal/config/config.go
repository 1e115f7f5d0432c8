package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"time"
)

const (
	StoreBackendMongo  = "mongo"
	StoreBackendMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Storage
	StoreBackend    string
	MongoURI        string
	MongoDbName     string
	StoreMaxRetries int
	MemorySeedFile  string // JSON users and properties for the memory backend

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string
	RequestTimeout time.Duration

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	LogEmailsPath   string // Append every outgoing email to this file when set

	// App Defaults
	AppName          string
	AppBaseURL       string
	PropertyCacheTTL time.Duration
	MockServices     bool

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.StoreBackend = getEnv("STORE_BACKEND", StoreBackendMongo)
	switch cfg.StoreBackend {
	case StoreBackendMongo:
		cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
		if err != nil {
			return nil, err
		}
	case StoreBackendMemory:
		cfg.MongoURI = getEnv("MONGO_URI", "")
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", cfg.StoreBackend, StoreBackendMongo, StoreBackendMemory)
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "realestate")
	cfg.MemorySeedFile = getEnv("MEMORY_SEED_FILE", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@realestate.example.com")
	cfg.AppName = getEnv("APP_NAME", "Real Estate")
	cfg.AppBaseURL = getEnv("APP_BASE_URL", "http://localhost:3000")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.StoreMaxRetries, err = strconv.Atoi(getEnv("STORE_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_RETRIES: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	requestTimeoutSeconds, err := strconv.ParseInt(getEnv("REQUEST_TIMEOUT_SECONDS", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: %w", err)
	}
	cfg.RequestTimeout = time.Duration(requestTimeoutSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	propertyCacheTTLSeconds, err := strconv.ParseInt(getEnv("PROPERTY_CACHE_TTL_SECONDS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROPERTY_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.PropertyCacheTTL = time.Duration(propertyCacheTTLSeconds) * time.Second

	cfg.MockServices, err = strconv.ParseBool(getEnv("MOCK_SERVICES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_SERVICES: %w", err)
	}
	cfg.LogEmailsPath = getEnv("LOG_EMAILS", "")

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
