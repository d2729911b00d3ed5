/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package config loads and validates the shared configuration for the
// indexer and assistant binaries. Configuration comes from a YAML file with
// environment-variable overrides for secrets. All required values are
// checked once at startup; a missing value is a fatal error there, never a
// per-call one.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values. Secrets should be
// supplied this way rather than written into the config file.
const (
	EnvWarehouseToken = "BIGTIME_WAREHOUSE_TOKEN"
	EnvStoreURL       = "BIGTIME_STORE_URL"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
)

// Config is the complete configuration surface.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// WarehouseConfig holds the warehouse connection settings.
type WarehouseConfig struct {
	Host        string `yaml:"host"`         // Warehouse hostname (required)
	HTTPPath    string `yaml:"http_path"`    // SQL endpoint HTTP path (required)
	AccessToken string `yaml:"access_token"` // Personal access token (required; prefer BIGTIME_WAREHOUSE_TOKEN)
	Catalog     string `yaml:"catalog"`      // Catalog to introspect (required)
	Schema      string `yaml:"schema"`       // Schema to introspect (required)
}

// StoreConfig holds the description-store connection settings.
type StoreConfig struct {
	URL string `yaml:"url"` // Postgres connection URL (required; prefer BIGTIME_STORE_URL)
}

// EmbeddingConfig holds the embedding provider settings. The model identity
// is shared by the indexing and search paths; changing it invalidates the
// stored index.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`       // "openai" or "ollama" (default: openai)
	Model        string `yaml:"model"`          // Provider-specific model name
	OpenAIAPIKey string `yaml:"openai_api_key"` // API key for OpenAI (prefer OPENAI_API_KEY)
	OllamaURL    string `yaml:"ollama_url"`     // URL for Ollama service (default: http://localhost:11434)
}

// Load reads the configuration file, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			OllamaURL: "http://localhost:11434",
		},
	}
}

func applyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvWarehouseToken); v != "" {
		cfg.Warehouse.AccessToken = v
	}
	if v := os.Getenv(EnvStoreURL); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		cfg.Embedding.OpenAIAPIKey = v
	}
}

// Validate checks that every value required before any component can run is
// present.
func (c *Config) Validate() error {
	switch {
	case c.Warehouse.Host == "":
		return fmt.Errorf("warehouse.host is required")
	case c.Warehouse.HTTPPath == "":
		return fmt.Errorf("warehouse.http_path is required")
	case c.Warehouse.AccessToken == "":
		return fmt.Errorf("warehouse.access_token is required (set %s)", EnvWarehouseToken)
	case c.Warehouse.Catalog == "":
		return fmt.Errorf("warehouse.catalog is required")
	case c.Warehouse.Schema == "":
		return fmt.Errorf("warehouse.schema is required")
	case c.Store.URL == "":
		return fmt.Errorf("store.url is required (set %s)", EnvStoreURL)
	}

	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.OpenAIAPIKey == "" {
			return fmt.Errorf("embedding.openai_api_key is required (set %s)", EnvOpenAIAPIKey)
		}
	case "ollama":
		// Ollama needs no credentials; the URL has a default.
	default:
		return fmt.Errorf("unsupported embedding provider: %s (supported: openai, ollama)", c.Embedding.Provider)
	}
	return nil
}
