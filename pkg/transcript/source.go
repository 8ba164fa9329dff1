package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/internal/types"
	"github.com/xhad/conceptube/pkg/metrics"
)

// FallbackSource tries each source in order and returns the first success.
type FallbackSource struct {
	sources []types.TranscriptSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFallbackSource(logger *slog.Logger, m *metrics.Metrics, sources ...types.TranscriptSource) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSource{sources: sources, logger: logger, metrics: m}
}

func (f *FallbackSource) Name() string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (f *FallbackSource) Fetch(ctx context.Context, videoURL string) (*models.Transcript, error) {
	if len(f.sources) == 0 {
		return nil, errors.New("no transcript sources configured")
	}

	var errs []error
	for _, src := range f.sources {
		t, err := src.Fetch(ctx, videoURL)
		if err == nil {
			return t, nil
		}
		f.metrics.ObserveSourceError(src.Name())
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		if ctx.Err() != nil {
			break
		}
		f.logger.Warn("transcript source failed",
			slog.String("source", src.Name()),
			slog.String("url", videoURL),
			slog.Any("err", err))
	}
	return nil, errors.Join(errs...)
}
