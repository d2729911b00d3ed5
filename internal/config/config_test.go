/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bigtime.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
warehouse:
  host: dbc-12345.cloud.example.com
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
store:
  url: postgres://bigtime@localhost:5432/bigtime
embedding:
  provider: openai
  model: text-embedding-3-small
  openai_api_key: sk-test
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Warehouse.Catalog != "main" || cfg.Warehouse.Schema != "sales" {
		t.Errorf("unexpected warehouse scope: %+v", cfg.Warehouse)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected embedding model: %s", cfg.Embedding.Model)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_MissingRequiredValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name: "no warehouse host",
			content: `
warehouse:
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
store:
  url: postgres://localhost/bigtime
embedding:
  openai_api_key: sk-test
`,
		},
		{
			name: "no store url",
			content: `
warehouse:
  host: dbc-12345.cloud.example.com
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
embedding:
  openai_api_key: sk-test
`,
		},
		{
			name: "openai provider without key",
			content: `
warehouse:
  host: dbc-12345.cloud.example.com
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
store:
  url: postgres://localhost/bigtime
`,
		},
		{
			name: "unknown provider",
			content: `
warehouse:
  host: dbc-12345.cloud.example.com
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
store:
  url: postgres://localhost/bigtime
embedding:
  provider: cohere
`,
		},
	}

	// Empty values are ignored by the override step, so this isolates the
	// subtests from any ambient environment.
	t.Setenv(EnvWarehouseToken, "")
	t.Setenv(EnvStoreURL, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvWarehouseToken, "dapi-from-env")
	t.Setenv(EnvStoreURL, "postgres://env@localhost/bigtime")
	t.Setenv(EnvOpenAIAPIKey, "sk-from-env")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Warehouse.AccessToken != "dapi-from-env" {
		t.Errorf("env must override file token, got %s", cfg.Warehouse.AccessToken)
	}
	if cfg.Store.URL != "postgres://env@localhost/bigtime" {
		t.Errorf("env must override store url, got %s", cfg.Store.URL)
	}
	if cfg.Embedding.OpenAIAPIKey != "sk-from-env" {
		t.Errorf("env must override api key, got %s", cfg.Embedding.OpenAIAPIKey)
	}
}

func TestLoad_OllamaNeedsNoCredentials(t *testing.T) {
	content := `
warehouse:
  host: dbc-12345.cloud.example.com
  http_path: /sql/1.0/warehouses/abc123
  access_token: dapi-test-token
  catalog: main
  schema: sales
store:
  url: postgres://localhost/bigtime
embedding:
  provider: ollama
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama url, got %s", cfg.Embedding.OllamaURL)
	}
}
