package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env      string
	LogLevel string
	APIPort  string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string
	SQLitePath string

	RedisAddr        string // Empty disables every Redis-backed cache
	RedisPassword    string
	RedisDB          int
	QuestionCacheTTL time.Duration

	PistonURL            string
	SandboxTimeout       time.Duration
	SandboxMaxConcurrent int
	SandboxCacheTTL      time.Duration
	GradingConcurrency   int

	LLMProvider    string
	LLMAPIKey      string
	LLMModel       string
	LLMBaseURL     string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration
}

// Load reads .env (if present) and the process environment. The returned
// value is meant to be handed to each component at construction time. Only
// the database settings are checked here; the API server also calls Validate.
func Load() (*Config, error) {
	// A missing .env is fine; containers pass plain environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIPort:  getEnv("API_PORT", getEnv("PORT", "5000")),

		DBDriver:   getEnv("DATABASE_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "codecoach"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "codecoach.db"),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		QuestionCacheTTL: getEnvAsDuration("QUESTION_CACHE_TTL", 5*time.Minute),

		PistonURL:            getEnv("PISTON_URL", "https://emkc.org/api/v2/piston/execute"),
		SandboxTimeout:       getEnvAsDuration("SANDBOX_TIMEOUT", 10*time.Second),
		SandboxMaxConcurrent: getEnvAsInt("SANDBOX_MAX_CONCURRENT", 8),
		SandboxCacheTTL:      getEnvAsDuration("SANDBOX_CACHE_TTL", 0),
		GradingConcurrency:   getEnvAsInt("GRADING_CONCURRENCY", 1),

		LLMProvider:    getEnv("LLM_PROVIDER", "together"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMTemperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	if err := cfg.validateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateStore() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DBDriver)
	}
}

// Validate rejects settings the API server cannot start with.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	switch c.LLMProvider {
	case "together", "openai", "anthropic", "gemini":
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the %s provider", c.LLMProvider)
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.SandboxTimeout <= 0 {
		return fmt.Errorf("SANDBOX_TIMEOUT must be positive")
	}
	if c.SandboxMaxConcurrent <= 0 {
		return fmt.Errorf("SANDBOX_MAX_CONCURRENT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
