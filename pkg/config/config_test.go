package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION", "PORT"} {
		t.Setenv(key, "")
	}

	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "vertex"
  project: "geminidynamo"
  location: "europe-west4"
  model: "gemini-1.5-flash"
  max_tokens: 1000
  temperature: 0.5

server:
  addr: ":9000"

transcript:
  sources:
    - "watchpage"
  language: "de"
  rate_limit: 1.5
  timeout: 10s

processor:
  chunk_size: 500

concepts:
  sample_size: 4
  verbose: false

log:
  level: "debug"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, ProviderVertex, config.LLM.Provider)
	assert.Equal(t, "geminidynamo", config.LLM.Project)
	assert.Equal(t, "europe-west4", config.LLM.Location)
	assert.Equal(t, "gemini-1.5-flash", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, []string{SourceWatchPage}, config.Transcript.Sources)
	assert.Equal(t, "de", config.Transcript.Language)
	assert.Equal(t, 10*time.Second, config.Transcript.Timeout)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 0, config.Processor.ChunkOverlap)
	assert.Equal(t, 4, config.Concepts.SampleSize)
	assert.False(t, config.Concepts.Verbose)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Empty(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderVertex, config.LLM.Provider)
	assert.Equal(t, "gemini-pro", config.LLM.Model)
	assert.Equal(t, "gemini-1.0-pro", config.LLM.CounterModel)
	assert.Equal(t, 1000, config.Processor.ChunkSize)
	assert.Equal(t, 0, config.Processor.ChunkOverlap)
	assert.Equal(t, []string{SourceYouTube, SourceWatchPage}, config.Transcript.Sources)
	assert.True(t, config.Concepts.Verbose)
	assert.Equal(t, 0, config.Concepts.SampleSize)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		applyDefaults(c)
		c.LLM.Project = "geminidynamo"
		return c
	}

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "vertex without project",
			mutate: func(c *Config) {
				c.LLM.Project = ""
			},
			errorMessages: []string{"llm.project: Google Cloud project is required"},
		},
		{
			name: "googleai without key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderGoogleAI
			},
			errorMessages: []string{"llm.api_key: API key is required"},
		},
		{
			name: "invalid config",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOllama
				c.LLM.BaseURL = "invalid-url"
				c.LLM.MaxTokens = 10000
				c.LLM.Temperature = 3.0
				c.Transcript.Sources = []string{"rss"}
				c.Processor.ChunkOverlap = 1000
				c.Concepts.SampleSize = -1
				c.Log.Level = "trace"
			},
			errorMessages: []string{
				"llm.base_url: invalid Ollama base URL",
				"llm.max_tokens: max_tokens must be between 1 and 8192",
				"llm.temperature: temperature must be between 0 and 2",
				"transcript.sources: unknown transcript source: rss",
				"processor.chunk_overlap: chunk_overlap must be non-negative and less than chunk_size",
				"concepts.sample_size: sample_size must not be negative",
				"log.level: unknown log level: trace",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)

			errors := config.Validate()
			assert.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				if i < len(errors) {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "asia-northeast1")
	t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	t.Setenv("PORT", "9090")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "env-project", config.LLM.Project)
	assert.Equal(t, "asia-northeast1", config.LLM.Location)
	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, ":9090", config.Server.Addr)
}
