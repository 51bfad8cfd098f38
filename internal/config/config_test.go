package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.LLMProvider != "ollama" {
		t.Errorf("LLMProvider = %q, want ollama", cfg.LLMProvider)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.BusQueueSize != 100 {
		t.Errorf("BusQueueSize = %d, want 100", cfg.BusQueueSize)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "Unknown store backend",
			env:  map[string]string{"STORE_BACKEND": "dynamo"},

			wantErr: true,
		},
		{
			name:    "Postgres backend requires password",
			env:     map[string]string{"STORE_BACKEND": "postgres"},
			wantErr: true,
		},
		{
			name: "Postgres backend with password",
			env: map[string]string{
				"STORE_BACKEND": "postgres",
				"DB_PASSWORD":   "secret",
			},
			wantErr: false,
		},
		{
			name:    "Unknown LLM provider",
			env:     map[string]string{"LLM_PROVIDER": "openai"},
			wantErr: true,
		},
		{
			name:    "Redis backend needs no credential",
			env:     map[string]string{"STORE_BACKEND": "redis"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigGeminiModelFallback(t *testing.T) {
	viper.Reset()
	t.Setenv("LLM_PROVIDER", "gemini")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.GeneratorModelName != "gemini-2.5-flash" {
		t.Errorf("GeneratorModelName = %q, want gemini-2.5-flash", cfg.GeneratorModelName)
	}

	viper.Reset()
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_GENERATOR_MODEL_NAME", "gemini-2.5-pro")

	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.GeneratorModelName != "gemini-2.5-pro" {
		t.Errorf("GeneratorModelName = %q, want gemini-2.5-pro", cfg.GeneratorModelName)
	}
}
