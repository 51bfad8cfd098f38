// Package config loads the application's configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

// DBConfig holds the Postgres connection settings for the postgres backend.
type DBConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// Config holds the application's configuration values.
//
// Collaborator credentials (YouTube, LLM, Resend) are deliberately not
// validated here: their absence is a job-scoped failure surfaced through the
// pipeline's error topics, not a startup error.
type Config struct {
	ServerPort string
	LogLevel   slog.Level
	LogFormat  string

	StoreBackend string
	RedisAddr    string
	Database     DBConfig

	LLMProvider        string
	OllamaHost         string
	GeneratorModelName string
	GeminiAPIKey       string

	YouTubeAPIKey string

	ResendAPIKey    string
	ResendFromEmail string
	ResendBaseURL   string

	BusQueueSize int
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates the fields the process itself needs
// to start. It uses the Viper library to handle loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("STORE_BACKEND", StoreBackendMemory)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "titleforge")
	viper.SetDefault("DB_NAME", "titleforge")
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	viper.SetDefault("RESEND_FROM_EMAIL", "titleforge@updates.example.com")
	viper.SetDefault("BUS_QUEUE_SIZE", 100)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	backend := strings.ToLower(viper.GetString("STORE_BACKEND"))
	switch backend {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %q", backend)
	}
	if backend == StoreBackendPostgres && viper.GetString("DB_PASSWORD") == "" {
		return nil, fmt.Errorf("DB_PASSWORD must be set for the postgres store backend")
	}

	provider := strings.ToLower(viper.GetString("LLM_PROVIDER"))
	switch provider {
	case "ollama", "gemini":
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %q", provider)
	}

	// Special handling for the Gemini generator model name.
	generatorModel := viper.GetString("GENERATOR_MODEL_NAME")
	if provider == "gemini" {
		geminiModel := viper.GetString("GEMINI_GENERATOR_MODEL_NAME")
		if geminiModel != "" {
			generatorModel = geminiModel
		} else {
			generatorModel = "gemini-2.5-flash"
		}
	}

	var logLevel slog.Level
	switch strings.ToLower(viper.GetString("LOG_LEVEL")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info":
		logLevel = slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", viper.GetString("LOG_LEVEL"))
		logLevel = slog.LevelInfo
	}

	return &Config{
		ServerPort:   viper.GetString("SERVER_PORT"),
		LogLevel:     logLevel,
		LogFormat:    viper.GetString("LOG_FORMAT"),
		StoreBackend: backend,
		RedisAddr:    viper.GetString("REDIS_ADDR"),
		Database: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			Username: viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_NAME"),
		},
		LLMProvider:        provider,
		OllamaHost:         viper.GetString("OLLAMA_HOST"),
		GeneratorModelName: generatorModel,
		GeminiAPIKey:       viper.GetString("GEMINI_API_KEY"),
		YouTubeAPIKey:      viper.GetString("YOUTUBE_API_KEY"),
		ResendAPIKey:       viper.GetString("RESEND_API_KEY"),
		ResendFromEmail:    viper.GetString("RESEND_FROM_EMAIL"),
		ResendBaseURL:      viper.GetString("RESEND_BASE_URL"),
		BusQueueSize:       viper.GetInt("BUS_QUEUE_SIZE"),
	}, nil
}
