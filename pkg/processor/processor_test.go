package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/pkg/processor"
)

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 1000})

	words := make([]string, 300)
	for i := range words {
		words[i] = "abcd"
	}
	text := strings.Join(words, " ")

	documents := []schema.Document{
		{
			PageContent: text,
			Metadata:    map[string]any{"title": "Lecture 1", "author": "Jane"},
		},
	}

	chunks, err := p.Process(documents)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Len(t, chunks[0].PageContent, 999)
	assert.Len(t, chunks[1].PageContent, 499)

	// zero overlap: the chunks rebuild the transcript exactly
	assert.Equal(t, text, chunks[0].PageContent+" "+chunks[1].PageContent)

	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.PageContent), 1000)
		assert.Equal(t, "Lecture 1", c.Metadata["title"])
		assert.Equal(t, "Jane", c.Metadata["author"])
	}

	chunks[0].Metadata["index"] = 0
	_, shared := chunks[1].Metadata["index"]
	assert.False(t, shared)
}

func TestProcessor_ShortText(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	chunks, err := p.Process([]schema.Document{{PageContent: "a short transcript"}})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short transcript", chunks[0].PageContent)
}

func TestProcessor_PrefersParagraphBreaks(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 40})

	text := "first paragraph is here\n\nsecond paragraph is here"
	chunks, err := p.Process([]schema.Document{{PageContent: text}})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph is here", chunks[0].PageContent)
	assert.Equal(t, "second paragraph is here", chunks[1].PageContent)
}
