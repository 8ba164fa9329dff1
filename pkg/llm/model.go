package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/googleai/vertex"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ModelConfig represents the configuration for the generative model handle.
type ModelConfig struct {
	Provider    string // vertex, googleai or ollama
	Model       string
	Project     string // Google Cloud project, vertex only
	Location    string // Google Cloud region, vertex only
	APIKey      string // googleai only
	BaseURL     string // Ollama server URL
	Temperature float64
	MaxTokens   int
}

// Engine is the long-lived model handle shared by every request. It is never
// mutated after construction.
type Engine struct {
	config ModelConfig
	llm    llms.Model
}

// NewWithConfig creates a new Engine for the configured provider.
func NewWithConfig(ctx context.Context, config ModelConfig) (*Engine, error) {
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}

	var (
		model llms.Model
		err   error
	)
	switch config.Provider {
	case "", "vertex":
		if config.Model == "" {
			config.Model = "gemini-pro"
		}
		if config.Project == "" {
			return nil, fmt.Errorf("vertex provider requires a Google Cloud project")
		}
		model, err = vertex.New(ctx,
			googleai.WithCloudProject(config.Project),
			googleai.WithCloudLocation(config.Location),
			googleai.WithDefaultModel(config.Model),
		)
	case "googleai":
		if config.Model == "" {
			config.Model = "gemini-pro"
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("googleai provider requires an API key")
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(config.APIKey),
			googleai.WithDefaultModel(config.Model),
		)
	case "ollama":
		if config.Model == "" {
			config.Model = "mistral"
		}
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		model, err = ollama.New(ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL))
	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Engine{
		config: config,
		llm:    model,
	}, nil
}

// NewWithModel wraps an already constructed model.
func NewWithModel(model llms.Model, config ModelConfig) *Engine {
	if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}
	return &Engine{config: config, llm: model}
}

func (e *Engine) Model() llms.Model {
	return e.llm
}

func (e *Engine) Config() ModelConfig {
	return e.config
}

// CallOptions are applied to every generation made through the engine.
func (e *Engine) CallOptions() []llms.CallOption {
	return []llms.CallOption{
		llms.WithTemperature(e.config.Temperature),
		llms.WithMaxTokens(e.config.MaxTokens),
	}
}

// Generate sends a single rendered prompt to the model and returns its text.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, e.llm, prompt, e.CallOptions()...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}
