package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/internal/progress"
	"github.com/xhad/conceptube/internal/types"
	"github.com/xhad/conceptube/pkg/metrics"
)

// ErrEmptyTranscript is returned when a video has captions but no text.
var ErrEmptyTranscript = errors.New("transcript is empty")

type RetrieverConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Progress io.Writer // progress bar output; nil disables it
}

// Retriever fetches a video's transcript and splits it into Documents.
type Retriever struct {
	source   types.TranscriptSource
	splitter types.Splitter
	counter  types.CharacterCounter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress io.Writer
}

func NewRetriever(source types.TranscriptSource, splitter types.Splitter, counter types.CharacterCounter, config RetrieverConfig) *Retriever {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Retriever{
		source:   source,
		splitter: splitter,
		counter:  counter,
		logger:   config.Logger,
		metrics:  config.Metrics,
		progress: config.Progress,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, videoURL string, verbose bool) ([]schema.Document, error) {
	t, err := r.source.Fetch(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoURL, err)
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoURL, ErrEmptyTranscript)
	}

	docs, err := r.splitter.Process([]schema.Document{t.Document()})
	if err != nil {
		return nil, err
	}

	billable := r.countBillableCharacters(ctx, docs)

	if verbose {
		r.logger.Info("retrieved transcript",
			slog.String(models.MetaAuthor, t.Video.Author),
			slog.Int(models.MetaLength, t.Video.Length),
			slog.String(models.MetaTitle, t.Video.Title),
			slog.Int("total_size", len(docs)),
			slog.Int("total_billable_characters", billable))
	}

	return docs, nil
}

// countBillableCharacters sums the counter over all docs. It only feeds
// cost logging, so a failure is logged and reported as -1.
func (r *Retriever) countBillableCharacters(ctx context.Context, docs []schema.Document) int {
	if r.counter == nil {
		return -1
	}

	r.logger.Info("counting total billable characters")
	bar := progress.NewBar(r.progress, len(docs), "Counting billable characters")
	total := 0
	for _, doc := range docs {
		n, err := r.counter.CountBillableCharacters(ctx, doc.PageContent)
		if err != nil {
			_ = bar.Exit()
			r.logger.Warn("failed to count billable characters", slog.Any("err", err))
			return -1
		}
		total += n
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	r.metrics.ObserveBillableChars(total)
	return total
}
