package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// External API clients
	OpenAI   OpenAIConfig
	Unsplash UnsplashConfig
	SerpAPI  SerpAPIConfig

	// Auto-post pipeline configuration
	AutoPost AutoPostConfig

	// Background scheduler configuration
	Scheduler SchedulerConfig

	// Admin gate configuration
	Admin AdminConfig

	// Keyword file import configuration
	Import ImportConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// OpenAIConfig holds text generation settings
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// UnsplashConfig holds image lookup settings
type UnsplashConfig struct {
	AccessKey string
	BaseURL   string
	Timeout   time.Duration
}

// SerpAPIConfig holds trend collection settings
type SerpAPIConfig struct {
	APIKey  string
	BaseURL string
	Geo     string
	Lang    string
	Limit   int
	Timeout time.Duration
}

// AutoPostConfig holds orchestrator settings
type AutoPostConfig struct {
	Timeout  time.Duration // wall-clock budget for one invocation
	Language string        // language the generated posts are written in
	BlogName string
}

// SchedulerConfig holds periodic trigger settings
type SchedulerConfig struct {
	Enabled          bool
	CollectInterval  time.Duration
	AutoPostInterval time.Duration
	AutoPostCount    int
}

// AdminConfig holds the admin gate settings
type AdminConfig struct {
	Token string
}

// ImportConfig holds keyword file import settings
type ImportConfig struct {
	MaxUploadSize int64 // bytes
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "trendscanner"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Temperature: float32(getFloatEnv("OPENAI_TEMPERATURE", 0.7)),
			MaxTokens:   getIntEnv("OPENAI_MAX_TOKENS", 3000),
			Timeout:     getDurationEnv("OPENAI_TIMEOUT", 45*time.Second),
		},
		Unsplash: UnsplashConfig{
			AccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
			BaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
			Timeout:   getDurationEnv("UNSPLASH_TIMEOUT", 10*time.Second),
		},
		SerpAPI: SerpAPIConfig{
			APIKey:  getEnv("SERPAPI_KEY", ""),
			BaseURL: getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
			Geo:     getEnv("SERPAPI_GEO", "KR"),
			Lang:    getEnv("SERPAPI_LANG", "ko"),
			Limit:   getIntEnv("SERPAPI_LIMIT", 30),
			Timeout: getDurationEnv("SERPAPI_TIMEOUT", 15*time.Second),
		},
		AutoPost: AutoPostConfig{
			Timeout:  getDurationEnv("AUTOPOST_TIMEOUT", 60*time.Second),
			Language: getEnv("AUTOPOST_LANGUAGE", "Korean"),
			BlogName: getEnv("AUTOPOST_BLOG_NAME", "TrendScanner"),
		},
		Scheduler: SchedulerConfig{
			Enabled:          getBoolEnv("SCHEDULER_ENABLED", false),
			CollectInterval:  getDurationEnv("SCHEDULER_COLLECT_INTERVAL", 6*time.Hour),
			AutoPostInterval: getDurationEnv("SCHEDULER_AUTOPOST_INTERVAL", 24*time.Hour),
			AutoPostCount:    getIntEnv("SCHEDULER_AUTOPOST_COUNT", 3),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Import: ImportConfig{
			MaxUploadSize: int64(getIntEnv("IMPORT_MAX_UPLOAD_SIZE", 10*1024*1024)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %v", c.OpenAI.Temperature)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}
	if c.Scheduler.Enabled && (c.Scheduler.AutoPostCount < 1 || c.Scheduler.AutoPostCount > 5) {
		return fmt.Errorf("SCHEDULER_AUTOPOST_COUNT must be between 1 and 5, got %d", c.Scheduler.AutoPostCount)
	}
	if c.Scheduler.Enabled && (c.Scheduler.CollectInterval <= 0 || c.Scheduler.AutoPostInterval <= 0) {
		return fmt.Errorf("scheduler intervals must be positive")
	}
	if c.Import.MaxUploadSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_SIZE must be positive")
	}
	if c.AutoPost.Timeout <= 0 {
		return fmt.Errorf("AUTOPOST_TIMEOUT must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
