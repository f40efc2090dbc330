package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CandidateRemovalPolicy decides what happens when an admin removes a
// candidate that already has recorded votes.
type CandidateRemovalPolicy string

const (
	// RemovalPolicyReject refuses the removal while votes exist.
	RemovalPolicyReject CandidateRemovalPolicy = "reject"
	// RemovalPolicyKeepTally removes the candidate but keeps its tally
	// entry as a historical record.
	RemovalPolicyKeepTally CandidateRemovalPolicy = "keep-tally"
)

// Config holds all configuration values for the application
type Config struct {
	Port                   string
	AllowedOrigins         []string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	Environment            string
	ReconcileInterval      time.Duration
	CandidateRemovalPolicy CandidateRemovalPolicy
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	interval, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	policy := CandidateRemovalPolicy(getEnv("CANDIDATE_REMOVAL_POLICY", string(RemovalPolicyReject)))
	switch policy {
	case RemovalPolicyReject, RemovalPolicyKeepTally:
	default:
		return nil, fmt.Errorf("invalid CANDIDATE_REMOVAL_POLICY: %q", policy)
	}

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigins:         parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		Environment:            getEnv("ENVIRONMENT", "production"),
		ReconcileInterval:      interval,
		CandidateRemovalPolicy: policy,
	}, nil
}

// IsDevelopment reports whether full error detail may be surfaced to
// callers.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
