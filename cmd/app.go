package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xhad/conceptube/internal/types"
	"github.com/xhad/conceptube/pkg/concepts"
	"github.com/xhad/conceptube/pkg/config"
	"github.com/xhad/conceptube/pkg/llm"
	"github.com/xhad/conceptube/pkg/metrics"
	"github.com/xhad/conceptube/pkg/processor"
	"github.com/xhad/conceptube/pkg/transcript"
)

// app holds the long-lived pipeline pieces built once at startup.
type app struct {
	config    *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	engine    *llm.Engine
	retriever *transcript.Retriever
	extractor *concepts.Extractor
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	engine, err := llm.NewWithConfig(ctx, llm.ModelConfig{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Project:     cfg.LLM.Project,
		Location:    cfg.LLM.Location,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	}

	a := &app{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		engine:   engine,
	}

	counter := a.newCounter(ctx)

	sources, err := newSources(cfg)
	if err != nil {
		return nil, err
	}
	source := transcript.NewFallbackSource(logger, m, sources...)

	p := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
	})

	a.retriever = transcript.NewRetriever(source, &p, counter, transcript.RetrieverConfig{
		Logger:   logger,
		Metrics:  m,
		Progress: progress,
	})
	a.extractor = concepts.NewExtractor(engine, concepts.ExtractorConfig{
		Logger:   logger,
		Metrics:  m,
		Progress: progress,
	})

	logger.Info("pipeline ready",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.Model),
		slog.String("sources", source.Name()))

	return a, nil
}

// newCounter uses Vertex AI billable character counts when running on
// Vertex and a local approximation otherwise.
func (a *app) newCounter(ctx context.Context) types.CharacterCounter {
	if a.config.LLM.Provider != config.ProviderVertex {
		return llm.CharCounter{}
	}
	vc, err := llm.NewVertexCounter(ctx, a.config.LLM.Project, a.config.LLM.Location, a.config.LLM.CounterModel)
	if err != nil {
		a.logger.Warn("falling back to local character count", slog.Any("err", err))
		return llm.CharCounter{}
	}
	a.closers = append(a.closers, vc.Close)
	return vc
}

func newSources(cfg *config.Config) ([]types.TranscriptSource, error) {
	sources := make([]types.TranscriptSource, 0, len(cfg.Transcript.Sources))
	for _, name := range cfg.Transcript.Sources {
		switch name {
		case config.SourceYouTube:
			client := &http.Client{Timeout: cfg.Transcript.Timeout}
			sources = append(sources, transcript.NewYouTubeSource(client, cfg.Transcript.Language))
		case config.SourceWatchPage:
			wp, err := transcript.NewWatchPageSource(transcript.WatchPageConfig{
				WatchURL:  cfg.Transcript.WatchURL,
				Language:  cfg.Transcript.Language,
				RateLimit: cfg.Transcript.RateLimit,
				Timeout:   cfg.Transcript.Timeout,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to initialize watch page source: %w", err)
			}
			sources = append(sources, wp)
		default:
			return nil, fmt.Errorf("unknown transcript source %q", name)
		}
	}
	return sources, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", slog.Any("err", err))
		}
	}
}
