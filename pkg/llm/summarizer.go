package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Inputs above this many documents are summarized with map-reduce.
const mapReduceThreshold = 10

// SummaryResult is either a summary or the reason there is none.
type SummaryResult struct {
	Text     string
	Strategy string
	Err      error
}

func (r SummaryResult) OK() bool {
	return r.Err == nil
}

// Summarizer produces one summary across all chunks of a transcript.
type Summarizer struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewSummarizer(engine *Engine, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{llm: engine.Model(), logger: logger}
}

// Strategy reports which chain Run picks for n documents.
func Strategy(n int) string {
	if n > mapReduceThreshold {
		return "map_reduce"
	}
	return "stuff"
}

// Run summarizes docs, reporting failure in the result instead of panicking
// or returning an error.
func (s *Summarizer) Run(ctx context.Context, docs []schema.Document, opts ...chains.ChainCallOption) (result SummaryResult) {
	result.Strategy = Strategy(len(docs))

	defer func() {
		if r := recover(); r != nil {
			result.Text = ""
			result.Err = fmt.Errorf("summary chain panicked: %v", r)
		}
	}()

	var chain chains.Chain
	if result.Strategy == "map_reduce" {
		chain = chains.LoadMapReduceSummarization(s.llm)
	} else {
		chain = chains.LoadStuffSummarization(s.llm)
	}

	out, err := chains.Call(ctx, chain, map[string]any{"input_documents": docs}, opts...)
	if err != nil {
		result.Err = err
		return result
	}
	text, ok := out["text"].(string)
	if !ok {
		result.Err = errors.New("summary chain returned no text")
		return result
	}
	result.Text = text
	return result
}

// Summarize returns the summary text, or nil if generation failed. Failures
// are logged and never returned.
func (s *Summarizer) Summarize(ctx context.Context, docs []schema.Document, opts ...chains.ChainCallOption) *string {
	result := s.Run(ctx, docs, opts...)
	if !result.OK() {
		s.logger.Error("failed to generate summary",
			slog.String("strategy", result.Strategy),
			slog.Any("err", result.Err))
		return nil
	}
	return &result.Text
}
