// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Oracle providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Embedding backends.
const (
	EmbeddingsGemini = "gemini"
	EmbeddingsHash   = "hash"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	Provider       string        `env:"STORY_ORACLE_PROVIDER" envDefault:"gemini"`
	Temperature    float64       `env:"STORY_TEMPERATURE" envDefault:"0.8"`
	Embeddings     string        `env:"STORY_EMBEDDINGS" envDefault:"gemini"`
	EmbeddingModel string        `env:"STORY_EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	OracleTimeout  time.Duration `env:"STORY_ORACLE_TIMEOUT" envDefault:"60s"`
	OracleMaxTries int           `env:"STORY_ORACLE_MAX_TRIES" envDefault:"1"`
	MaxTurns       int           `env:"STORY_MAX_TURNS" envDefault:"15"`
	ReferenceCount int           `env:"STORY_REFERENCE_COUNT" envDefault:"2"`

	HTTPAddr      string   `env:"STORY_HTTP_ADDR" envDefault:":8000"`
	CORSOrigins   []string `env:"STORY_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	RatePerMinute int      `env:"STORY_RATE_PER_MINUTE" envDefault:"30"`
	JournalPath   string   `env:"STORY_JOURNAL_PATH"`

	LogLevel     string `env:"STORY_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"STORY_LOG_FORMAT" envDefault:"text"`
	LogFile      string `env:"STORY_LOG_FILE"` // terminal client only
	OTelEndpoint string `env:"STORY_OTEL_ENDPOINT"`
	ServiceName  string `env:"STORY_SERVICE_NAME" envDefault:"story-adventure"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable together.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown STORY_ORACLE_PROVIDER %q", c.Provider)
	}

	switch c.Embeddings {
	case EmbeddingsGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for gemini embeddings (set STORY_EMBEDDINGS=hash to run without it)")
		}
	case EmbeddingsHash:
	default:
		return fmt.Errorf("unknown STORY_EMBEDDINGS %q", c.Embeddings)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("STORY_TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("STORY_ORACLE_TIMEOUT must be positive")
	}
	if c.OracleMaxTries < 1 {
		return fmt.Errorf("STORY_ORACLE_MAX_TRIES must be at least 1")
	}
	if c.MaxTurns < 2 {
		return fmt.Errorf("STORY_MAX_TURNS must be at least 2, got %d", c.MaxTurns)
	}
	if c.ReferenceCount < 0 {
		return fmt.Errorf("STORY_REFERENCE_COUNT must not be negative")
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("STORY_RATE_PER_MINUTE must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("STORY_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid STORY_LOG_LEVEL: %w", err)
	}
	return level, nil
}
