// Package config holds the pathweaver configuration, loaded from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all pathweaver configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Embedding engine (catalog and pathway vectors)
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Requirement-to-query translation
	Translator TranslatorConfig `yaml:"translator"`

	// Narrative summary generation
	Summarizer SummarizerConfig `yaml:"summarizer"`

	// SQLite storage
	Storage StorageConfig `yaml:"storage"`

	// Completion pipeline tuning
	Engine EngineConfig `yaml:"engine"`

	// HTTP surface
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // genai, ollama
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// TranslatorConfig configures the query translator.
type TranslatorConfig struct {
	Provider  string `yaml:"provider"` // rules, genai, openai
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	CacheSize int    `yaml:"cache_size"`
}

// SummarizerConfig configures the pathway summarizer.
type SummarizerConfig struct {
	Provider string `yaml:"provider"` // none, genai, openai
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

// StorageConfig configures SQLite storage and catalog ingestion.
type StorageConfig struct {
	CatalogDB   string `yaml:"catalog_db"`
	PathwayDB   string `yaml:"pathway_db"`
	CatalogFeed string `yaml:"catalog_feed"`
	WatchFeed   bool   `yaml:"watch_feed"`
}

// EngineConfig tunes the completion pipeline.
type EngineConfig struct {
	SimilarLimit          int  `yaml:"similar_limit"`
	ResultLimit           int  `yaml:"result_limit"`
	FanOut                int  `yaml:"fan_out"`
	SummarizePlaceholders bool `yaml:"summarize_placeholders"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "pathweaver",
		Version: "0.3.0",

		Embedding: EmbeddingConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},

		Translator: TranslatorConfig{
			Provider:  "rules",
			CacheSize: 512,
		},

		Summarizer: SummarizerConfig{
			Provider: "none",
		},

		Storage: StorageConfig{
			CatalogDB: "data/catalog.db",
			PathwayDB: "data/pathways.db",
		},

		Engine: EngineConfig{
			SimilarLimit: 8,
			ResultLimit:  10,
			FanOut:       8,
		},

		Server: ServerConfig{
			Addr:            ":8090",
			ShutdownTimeout: "15s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. A .env file in the working directory is folded into the
// environment before overrides apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. API keys are
// never expected in the YAML file in production.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Embedding.APIKey = key
		if c.Translator.Provider == "genai" {
			c.Translator.APIKey = key
		}
		if c.Summarizer.Provider == "genai" {
			c.Summarizer.APIKey = key
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.Translator.Provider == "openai" {
			c.Translator.APIKey = key
		}
		if c.Summarizer.Provider == "openai" {
			c.Summarizer.APIKey = key
		}
	}

	if url := os.Getenv("OLLAMA_URL"); url != "" {
		c.Embedding.BaseURL = url
	}
	if addr := os.Getenv("PATHWEAVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("PATHWEAVER_CATALOG_DB"); path != "" {
		c.Storage.CatalogDB = path
	}
	if path := os.Getenv("PATHWEAVER_PATHWAY_DB"); path != "" {
		c.Storage.PathwayDB = path
	}
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
