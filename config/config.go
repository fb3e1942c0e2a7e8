// Package config loads application configuration from an optional YAML file
// with environment variable overrides for deployment-sensitive values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig configures the OpenAI-compatible chat and embedding client.
// The API key is never read from the file, only from APIKeyEnv.
type OpenAIConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	EmbedModel  string  `yaml:"embed_model"`
	EmbedDims   int     `yaml:"embed_dims"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// ChunkingConfig configures document splitting and ingestion batching.
type ChunkingConfig struct {
	MaxTokens     int `yaml:"max_tokens"`
	OverlapTokens int `yaml:"overlap_tokens"`
	BatchSize     int `yaml:"batch_size"`
}

// AnswerConfig configures retrieval limits for question answering.
type AnswerConfig struct {
	DefaultTopK int    `yaml:"default_top_k"`
	DefaultLang string `yaml:"default_lang"`
}

// FallbackConfig configures the contact handoff for unanswerable questions.
type FallbackConfig struct {
	WhatsAppNumber  string `yaml:"whatsapp_number"`
	WhatsAppMessage string `yaml:"whatsapp_message"`
}

// Config is the root application configuration.
type Config struct {
	Addr      string         `yaml:"addr"`
	VectorDSN string         `yaml:"vector_dsn"` // pgvector database
	LogDSN    string         `yaml:"log_dsn"`    // chat log database, sqlite path or postgres URL
	OpenAI    OpenAIConfig   `yaml:"openai"`
	Chunking  ChunkingConfig `yaml:"chunking"`
	Answer    AnswerConfig   `yaml:"answer"`
	Fallback  FallbackConfig `yaml:"fallback"`
}

// Load reads config from path. A missing file yields defaults; environment
// overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		applyDefaults(cfg)
	}

	applyEnv(cfg)
	return cfg, nil
}

// APIKey resolves the OpenAI API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.OpenAI.APIKeyEnv)
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbedModel == "" {
		cfg.OpenAI.EmbedModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.EmbedDims == 0 {
		cfg.OpenAI.EmbedDims = 1536
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.2
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = 60
	}
	if cfg.Chunking.MaxTokens == 0 {
		cfg.Chunking.MaxTokens = 500
	}
	if cfg.Chunking.OverlapTokens == 0 {
		cfg.Chunking.OverlapTokens = 100
	}
	if cfg.Chunking.BatchSize == 0 {
		cfg.Chunking.BatchSize = 64
	}
	if cfg.Answer.DefaultTopK == 0 {
		cfg.Answer.DefaultTopK = 6
	}
	if cfg.Answer.DefaultLang == "" {
		cfg.Answer.DefaultLang = "ar"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.VectorDSN = v
	}
	if v := os.Getenv("LOG_DATABASE_URL"); v != "" {
		cfg.LogDSN = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.OpenAI.EmbedModel = v
	}
	if v := os.Getenv("EMBED_DIMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpenAI.EmbedDims = n
		}
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.APIKey() == "" {
		return fmt.Errorf("%s is not set", c.OpenAI.APIKeyEnv)
	}
	if c.VectorDSN == "" {
		return fmt.Errorf("vector_dsn (or DATABASE_URL) is required")
	}
	return nil
}
