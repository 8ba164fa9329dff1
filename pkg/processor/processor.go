package processor

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// Processor splits documents into fixed-size chunks. Each chunk inherits the
// metadata of the document it came from.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if len(config.Separators) == 0 {
		config.Separators = []string{"\n\n", "\n", " ", ""}
	}

	return Processor{
		config: config,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
			textsplitter.WithSeparators(config.Separators),
		),
	}
}

func (p *Processor) Process(docs []schema.Document) ([]schema.Document, error) {
	chunks, err := textsplitter.SplitDocuments(p.splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("split documents: %w", err)
	}

	// Give every chunk its own metadata map so callers can annotate chunks
	// independently.
	for i := range chunks {
		meta := make(map[string]any, len(chunks[i].Metadata))
		for k, v := range chunks[i].Metadata {
			meta[k] = v
		}
		chunks[i].Metadata = meta
	}

	return chunks, nil
}
