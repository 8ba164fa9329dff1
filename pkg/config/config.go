package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider     string  `yaml:"provider"`
		Project      string  `yaml:"project"`
		Location     string  `yaml:"location"`
		Model        string  `yaml:"model"`
		APIKey       string  `yaml:"api_key"`
		BaseURL      string  `yaml:"base_url"`
		MaxTokens    int     `yaml:"max_tokens"`
		Temperature  float64 `yaml:"temperature"`
		CounterModel string  `yaml:"counter_model"`
	} `yaml:"llm"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Transcript struct {
		Sources   []string      `yaml:"sources"`
		Language  string        `yaml:"language"`
		WatchURL  string        `yaml:"watch_url"`
		RateLimit float64       `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"transcript"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Concepts struct {
		SampleSize int  `yaml:"sample_size"`
		Verbose    bool `yaml:"verbose"`
	} `yaml:"concepts"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/conceptube/config.yaml"),
			"/etc/conceptube/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{}
	// Verbose is on unless the file says otherwise.
	config.Concepts.Verbose = true
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(config)

	// Apply defaults for unset values
	applyDefaults(config)

	return config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	config.Concepts.Verbose = true
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = ProviderVertex
	}
	if config.LLM.Model == "" {
		switch config.LLM.Provider {
		case ProviderOllama:
			config.LLM.Model = "mistral"
		default:
			config.LLM.Model = "gemini-pro"
		}
	}
	if config.LLM.Location == "" {
		config.LLM.Location = "us-central1"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2048
	}
	if config.LLM.CounterModel == "" {
		config.LLM.CounterModel = "gemini-1.0-pro"
	}
	if config.LLM.Provider == ProviderOllama && config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}

	if len(config.Transcript.Sources) == 0 {
		config.Transcript.Sources = []string{SourceYouTube, SourceWatchPage}
	}
	if config.Transcript.Language == "" {
		config.Transcript.Language = "en"
	}
	if config.Transcript.WatchURL == "" {
		config.Transcript.WatchURL = "https://www.youtube.com/watch"
	}
	if config.Transcript.RateLimit == 0 {
		config.Transcript.RateLimit = 2.0
	}
	if config.Transcript.Timeout == 0 {
		config.Transcript.Timeout = 30 * time.Second
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1000
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		config.LLM.Project = project
	}
	if location := os.Getenv("GOOGLE_CLOUD_LOCATION"); location != "" {
		config.LLM.Location = location
	}
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
}
