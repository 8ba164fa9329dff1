package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	ProviderVertex   = "vertex"
	ProviderGoogleAI = "googleai"
	ProviderOllama   = "ollama"

	SourceYouTube   = "youtube"
	SourceWatchPage = "watchpage"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	switch c.LLM.Provider {
	case ProviderVertex:
		if c.LLM.Project == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.project",
				Message: "Google Cloud project is required for the vertex provider",
			})
		}
	case ProviderGoogleAI:
		if c.LLM.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.api_key",
				Message: "API key is required for the googleai provider",
			})
		}
	case ProviderOllama:
		if _, err := url.ParseRequestURI(c.LLM.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid Ollama base URL",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.LLM.Provider),
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Transcript config
	if len(c.Transcript.Sources) == 0 {
		errors = append(errors, ValidationError{
			Field:   "transcript.sources",
			Message: "at least one transcript source is required",
		})
	}
	for _, src := range c.Transcript.Sources {
		if src != SourceYouTube && src != SourceWatchPage {
			errors = append(errors, ValidationError{
				Field:   "transcript.sources",
				Message: fmt.Sprintf("unknown transcript source: %s", src),
			})
		}
	}

	if u, err := url.Parse(c.Transcript.WatchURL); err != nil || !strings.HasPrefix(u.Scheme, "http") {
		errors = append(errors, ValidationError{
			Field:   "transcript.watch_url",
			Message: "invalid watch page URL",
		})
	}

	if c.Transcript.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "transcript.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate Processor config
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap < 0 || c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	// Validate Concepts config
	if c.Concepts.SampleSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "concepts.sample_size",
			Message: "sample_size must not be negative",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level: %s", c.Log.Level),
		})
	}

	return errors
}
