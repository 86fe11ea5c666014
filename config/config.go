package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Session   SessionConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

// StoreConfig selects and configures the document store backend.
// Backend "firestore" is the default; "memory" runs without credentials
// and keeps everything in process (dev only).
type StoreConfig struct {
	Backend         string
	ProjectID       string
	CredentialsPath string
}

type SessionConfig struct {
	CookieName string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Host:        getEnv("HOST", "0.0.0.0"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "firestore"),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./serviceAccount.json"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "daynight_session"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		RateLimit: RateLimitConfig{
			Requests: parseInt(getEnv("RATE_LIMIT_REQUESTS", "100"), 100),
			Window:   parseDuration(getEnv("RATE_LIMIT_WINDOW", "60"), 60*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	// If it's just a number, assume seconds
	if i, err := strconv.Atoi(s); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}

func parseStringSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) Validate() {
	if c.Store.Backend != "firestore" && c.Store.Backend != "memory" {
		log.Fatalf("Unknown STORE_BACKEND: %s", c.Store.Backend)
	}
	if c.Store.Backend == "memory" && c.IsProduction() {
		log.Fatal("STORE_BACKEND=memory is not allowed in production")
	}
	if c.Store.Backend == "firestore" {
		if c.Store.ProjectID == "" {
			log.Fatal("FIREBASE_PROJECT_ID must be set")
		}
		if _, err := os.Stat(c.Store.CredentialsPath); os.IsNotExist(err) {
			log.Fatalf("Firebase credentials file not found: %s", c.Store.CredentialsPath)
		}
	}
}
