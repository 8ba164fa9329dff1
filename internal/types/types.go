package types

import (
	"context"

	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/internal/models"
)

// Core interfaces
type TranscriptSource interface {
	Name() string
	Fetch(ctx context.Context, videoURL string) (*models.Transcript, error)
}

type Splitter interface {
	Process(docs []schema.Document) ([]schema.Document, error)
}

type CharacterCounter interface {
	CountBillableCharacters(ctx context.Context, text string) (int, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, videoURL string, verbose bool) ([]schema.Document, error)
}

type ConceptExtractor interface {
	Extract(ctx context.Context, docs []schema.Document, sampleSize int, verbose bool) ([]models.ConceptMap, error)
}
