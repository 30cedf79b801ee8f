package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	FrontendURL    string
	AllowedOrigins []string
	Environment    string
	LogLevel       string

	// CSG quoting API
	CSGBaseURL string
	CSGAPIKey  string
	CSGTimeout time.Duration

	// Cache & session lifetimes
	QuoteCacheTTL   time.Duration
	CarrierCacheTTL time.Duration
	SessionTTL      time.Duration

	// Secrets
	JWTSecret         string
	DataEncryptionKey string
	AdminTokenHash    string
	AdminTOTPSecret   string

	// Resend Email
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	RateLimitPerMinute int
}

// IsProduction reports whether logs must be masked.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the configuration from the environment, after an optional
// .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		Environment:       strings.ToLower(getEnv("ENVIRONMENT", "development")),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		CSGBaseURL:        os.Getenv("CSG_BASE_URL"),
		CSGAPIKey:         os.Getenv("CSG_API_KEY"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		DataEncryptionKey: os.Getenv("DATA_ENCRYPTION_KEY"),
		AdminTokenHash:    os.Getenv("ADMIN_TOKEN_HASH"),
		AdminTOTPSecret:   os.Getenv("ADMIN_TOTP_SECRET"),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
		EmailFromName:     os.Getenv("EMAIL_FROM_NAME"),
	}

	cfg.CSGTimeout = getEnvDuration("CSG_TIMEOUT", 30*time.Second)
	cfg.QuoteCacheTTL = getEnvDuration("QUOTE_CACHE_TTL", 6*time.Hour)
	cfg.CarrierCacheTTL = getEnvDuration("CARRIER_CACHE_TTL", 24*time.Hour)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 100)

	cfg.AllowedOrigins = []string{cfg.FrontendURL}
	for _, origin := range splitList(os.Getenv("ALLOWED_ORIGINS")) {
		if origin != cfg.FrontendURL {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for main: invalid configuration is fatal.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Validate checks the settings the API cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if len(c.DataEncryptionKey) != 32 {
		errs = append(errs, errors.New("DATA_ENCRYPTION_KEY must be exactly 32 characters"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️  %s=%q is not a valid duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
