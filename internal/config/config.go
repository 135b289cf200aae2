package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// directory config
	DIRECTORY_BACKEND  string
	DIRECTORY_BASE_URL string
	DIRECTORY_TIMEOUT  time.Duration
	PAGE_SIZE          int
	RATING_MODE        string
	SEARCH_DEBOUNCE    time.Duration
	BROWSE_SESSION_TTL time.Duration
	ELASTIC_URL        string
	ELASTIC_INDEX      string
	// bookmark config
	BOOKMARK_BACKEND  string
	BOOKMARK_FILE_DIR string
	BOOKMARK_KEY      string
	REDIS_ADDR        string
	REDIS_PASSWORD    string
	REDIS_PREFIX      string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// datastore config
	DATASTORE_PROJECT_ID string
	// text generation config
	LLM_PROVIDER          string
	LLM_API_KEY           string
	LLM_MODEL             string
	LLM_BASE_URL          string
	PROMPT_FILE           string
	SUGGESTION_RATE_LIMIT string
}

// LoadEnvConfig reads .env when present and fills DefaultEnvConfig from the environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:              getEnvString("APP_PORT", "8080"),
		LOG_FILE_PATH:         getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:             getEnvString("LOG_LEVEL", "info"),
		DIRECTORY_BACKEND:     getEnvString("DIRECTORY_BACKEND", "http"),
		DIRECTORY_BASE_URL:    getEnvString("DIRECTORY_BASE_URL", "https://dummyjson.com"),
		DIRECTORY_TIMEOUT:     getEnvDuration("DIRECTORY_TIMEOUT", 10*time.Second),
		PAGE_SIZE:             getEnvInt("PAGE_SIZE", 12),
		RATING_MODE:           getEnvString("RATING_MODE", "stable"),
		SEARCH_DEBOUNCE:       getEnvDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),
		BROWSE_SESSION_TTL:    getEnvDuration("BROWSE_SESSION_TTL", 30*time.Minute),
		ELASTIC_URL:           getEnvString("ELASTIC_URL", "http://localhost:9200"),
		ELASTIC_INDEX:         getEnvString("ELASTIC_INDEX", "employees"),
		BOOKMARK_BACKEND:      getEnvString("BOOKMARK_BACKEND", "file"),
		BOOKMARK_FILE_DIR:     getEnvString("BOOKMARK_FILE_DIR", "./data"),
		BOOKMARK_KEY:          getEnvString("BOOKMARK_KEY", "performpulse-bookmarks"),
		REDIS_ADDR:            getEnvString("REDIS_ADDR", "localhost:6379"),
		REDIS_PASSWORD:        getEnvString("REDIS_PASSWORD", ""),
		REDIS_PREFIX:          getEnvString("REDIS_PREFIX", "performpulse:"),
		DB_HOST:               getEnvString("DB_HOST", "localhost"),
		DB_PORT:               getEnvInt("DB_PORT", 5432),
		DB_USER:               getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:           getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:               getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:           getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:  getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:     getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DATASTORE_PROJECT_ID:  getEnvString("DATASTORE_PROJECT_ID", ""),
		LLM_PROVIDER:          getEnvString("LLM_PROVIDER", "gemini"),
		LLM_API_KEY:           getEnvString("LLM_API_KEY", ""),
		LLM_MODEL:             getEnvString("LLM_MODEL", ""),
		LLM_BASE_URL:          getEnvString("LLM_BASE_URL", ""),
		PROMPT_FILE:           getEnvString("PROMPT_FILE", "prompts/suggest_project_assignments.yaml"),
		SUGGESTION_RATE_LIMIT: getEnvString("SUGGESTION_RATE_LIMIT", "20-M"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
