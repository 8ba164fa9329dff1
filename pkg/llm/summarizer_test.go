package llm_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/internal/llmtest"
	"github.com/xhad/conceptube/pkg/llm"
)

func makeDocs(n int) []schema.Document {
	docs := make([]schema.Document, n)
	for i := range docs {
		docs[i] = schema.Document{PageContent: fmt.Sprintf("chunk %d of the lecture", i)}
	}
	return docs
}

func newSummarizer(model *llmtest.FakeModel) *llm.Summarizer {
	engine := llm.NewWithModel(model, llm.ModelConfig{})
	return llm.NewSummarizer(engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStrategy(t *testing.T) {
	assert.Equal(t, "stuff", llm.Strategy(1))
	assert.Equal(t, "stuff", llm.Strategy(10))
	assert.Equal(t, "map_reduce", llm.Strategy(11))
}

func TestSummarizeStuff(t *testing.T) {
	model := &llmtest.FakeModel{Respond: func(string) (string, error) {
		return "A lecture about chunks.", nil
	}}
	s := newSummarizer(model)

	summary := s.Summarize(context.Background(), makeDocs(3))
	require.NotNil(t, summary)
	assert.Equal(t, "A lecture about chunks.", *summary)

	prompts := model.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "chunk 0 of the lecture")
	assert.Contains(t, prompts[0], "chunk 2 of the lecture")
}

func TestSummarizeMapReduce(t *testing.T) {
	model := &llmtest.FakeModel{Respond: func(string) (string, error) {
		return "partial summary", nil
	}}
	s := newSummarizer(model)

	result := s.Run(context.Background(), makeDocs(12))
	require.True(t, result.OK(), "unexpected error: %v", result.Err)
	assert.Equal(t, "map_reduce", result.Strategy)
	assert.Equal(t, "partial summary", result.Text)
	// every document is mapped before the reduce step
	assert.GreaterOrEqual(t, len(model.Prompts()), 12)
}

func TestSummarizeFailureReturnsNil(t *testing.T) {
	model := &llmtest.FakeModel{Respond: func(string) (string, error) {
		return "", errors.New("model unavailable")
	}}
	s := newSummarizer(model)

	result := s.Run(context.Background(), makeDocs(2))
	assert.False(t, result.OK())
	assert.ErrorContains(t, result.Err, "model unavailable")

	assert.Nil(t, s.Summarize(context.Background(), makeDocs(2)))
}
