package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	StoreBackend  string `yaml:"store"`
	DatabaseURL   string `yaml:"database_url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	BoltPath      string `yaml:"bolt_path"`
	SQLitePath    string `yaml:"sqlite_path"`

	NatsURL   string `yaml:"nats_url"`
	NatsToken string `yaml:"nats_token"`

	CompletionProvider    string `yaml:"completion_provider"`
	TranscriptionProvider string `yaml:"transcription_provider"`

	CloudflareAccountID string `yaml:"cloudflare_account_id"`
	CloudflareAPIToken  string `yaml:"cloudflare_api_token"`
	CompletionModel     string `yaml:"completion_model"`
	TranscriptionModel  string `yaml:"transcription_model"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	OpenAIAPIKey             string `yaml:"openai_api_key"`
	OpenAIBaseURL            string `yaml:"openai_base_url"`
	OpenAIModel              string `yaml:"openai_model"`
	OpenAITranscriptionModel string `yaml:"openai_transcription_model"`

	DefaultLanguage string `yaml:"default_language"`
	MaxUploadBytes  int    `yaml:"max_upload_bytes"`
}

func defaults() Config {
	return Config{
		Port:                     8780,
		LogLevel:                 "info",
		StoreBackend:             "memory",
		BoltPath:                 "data/babel.bolt",
		SQLitePath:               "data/babel.db",
		CompletionProvider:       "workersai",
		TranscriptionProvider:    "workersai",
		CompletionModel:          "@cf/meta/llama-3.1-8b-instruct",
		TranscriptionModel:       "@cf/openai/whisper",
		AnthropicModel:           "claude-sonnet-4-20250514",
		OpenAIModel:              "gpt-4o-mini",
		OpenAITranscriptionModel: "whisper-1",
		DefaultLanguage:          "French",
		MaxUploadBytes:           32 << 20,
	}
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile reads a YAML file on top of the defaults; environment variables
// still take precedence over the file.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envInt("BABEL_PORT", cfg.Port)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)

	cfg.StoreBackend = envStr("BABEL_STORE", cfg.StoreBackend)
	cfg.DatabaseURL = envStr("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = envStr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envStr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("REDIS_DB", cfg.RedisDB)
	cfg.BoltPath = envStr("BABEL_BOLT_PATH", cfg.BoltPath)
	cfg.SQLitePath = envStr("BABEL_SQLITE_PATH", cfg.SQLitePath)

	cfg.NatsURL = envStr("NATS_URL", cfg.NatsURL)
	cfg.NatsToken = envStr("NATS_TOKEN", cfg.NatsToken)

	cfg.CompletionProvider = envStr("BABEL_COMPLETION_PROVIDER", cfg.CompletionProvider)
	cfg.TranscriptionProvider = envStr("BABEL_TRANSCRIPTION_PROVIDER", cfg.TranscriptionProvider)

	cfg.CloudflareAccountID = envStr("CLOUDFLARE_ACCOUNT_ID", cfg.CloudflareAccountID)
	cfg.CloudflareAPIToken = envStr("CLOUDFLARE_API_TOKEN", cfg.CloudflareAPIToken)
	cfg.CompletionModel = envStr("BABEL_COMPLETION_MODEL", cfg.CompletionModel)
	cfg.TranscriptionModel = envStr("BABEL_TRANSCRIPTION_MODEL", cfg.TranscriptionModel)

	cfg.AnthropicAPIKey = envStr("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.AnthropicModel = envStr("ANTHROPIC_MODEL", cfg.AnthropicModel)

	cfg.OpenAIAPIKey = envStr("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envStr("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = envStr("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAITranscriptionModel = envStr("OPENAI_TRANSCRIPTION_MODEL", cfg.OpenAITranscriptionModel)

	cfg.DefaultLanguage = envStr("BABEL_DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.MaxUploadBytes = envInt("BABEL_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
