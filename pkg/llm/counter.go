package llm

import (
	"context"
	"fmt"
	"unicode"

	"cloud.google.com/go/vertexai/genai"
)

// VertexCounter asks Vertex AI how many billable characters a text has.
type VertexCounter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewVertexCounter(ctx context.Context, project, location, model string) (*VertexCounter, error) {
	if model == "" {
		model = "gemini-1.0-pro"
	}
	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	return &VertexCounter{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

func (c *VertexCounter) CountBillableCharacters(ctx context.Context, text string) (int, error) {
	resp, err := c.model.CountTokens(ctx, genai.Text(text))
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return int(resp.TotalBillableCharacters), nil
}

func (c *VertexCounter) Close() error {
	return c.client.Close()
}

// CharCounter approximates Vertex billing locally: every character except
// whitespace is billable. Used for providers without a counting endpoint.
type CharCounter struct{}

func (CharCounter) CountBillableCharacters(_ context.Context, text string) (int, error) {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n, nil
}
