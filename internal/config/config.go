package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Metasearch
	SearxngURL       string // Private JSON-capable instance, empty disables pinning
	SearchProxy      string
	SearchMaxRetries int
	SearchTimeout    time.Duration
	TavilyAPIKey     string
	// Cache
	RedisURL       string
	SearchCacheTTL time.Duration
	// LLM Configuration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	TurnTimeout     time.Duration
	// Logging
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	// Rate limiting (per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		// Metasearch
		SearxngURL:       getEnv("SEARXNG_URL", DefaultSearxngURL),
		SearchProxy:      getEnv("SEARCH_PROXY", ""),
		SearchMaxRetries: getEnvInt("SEARCH_MAX_RETRIES", DefaultSearchRetries),
		SearchTimeout:    getEnvDuration("SEARCH_TIMEOUT", DefaultSearchTimeout),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		// Cache
		RedisURL:       getEnv("REDIS_URL", ""),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		// LLM Configuration
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		TurnTimeout:     getEnvDuration("TURN_TIMEOUT", 5*time.Minute),
		// Logging
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		// Rate limiting
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
