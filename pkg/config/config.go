package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	Registry RegistryConfig
	GitHub   GitHubConfig
	Workers  WorkersConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type SessionConfig struct {
	Secret   string
	TTLHours int
}

// RedisConfig selects the dashboard session store. An empty Addr keeps
// sessions in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RegistryConfig struct {
	IDPrefix            string
	DefaultDeadlineDays int
	ReconcileSchedule   string
}

type GitHubConfig struct {
	Token       string
	VerifyLinks bool
}

type WorkersConfig struct {
	LinkCheckIntervalMinutes int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./projectdesk.db"),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", "default-secret-key"),
			TTLHours: getEnvAsInt("SESSION_TTL_HOURS", 12),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Registry: RegistryConfig{
			IDPrefix:            getEnv("ID_PREFIX", "PROYECTO"),
			DefaultDeadlineDays: getEnvAsInt("DEFAULT_DEADLINE_DAYS", 30),
			ReconcileSchedule:   getEnv("RECONCILE_SCHEDULE", "0 3 * * *"),
		},
		GitHub: GitHubConfig{
			Token:       getEnv("GITHUB_TOKEN", ""),
			VerifyLinks: getEnvAsBool("GITHUB_VERIFY_LINKS", false),
		},
		Workers: WorkersConfig{
			LinkCheckIntervalMinutes: getEnvAsInt("LINK_CHECK_INTERVAL_MINUTES", 60),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if AppConfig.Workers.LinkCheckIntervalMinutes <= 0 {
		return fmt.Errorf("LINK_CHECK_INTERVAL_MINUTES must be positive, got %d", AppConfig.Workers.LinkCheckIntervalMinutes)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
