// Package llmtest provides a scripted llms.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeModel answers prompts with Respond and records every prompt it saw.
type FakeModel struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Responses returns a model that replies with the given answers in order
// and fails once they run out.
func Responses(answers ...string) *FakeModel {
	var (
		mu sync.Mutex
		i  int
	)
	return &FakeModel{Respond: func(string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(answers) {
			return "", errors.New("fake model: no more responses")
		}
		i++
		return answers[i-1], nil
	}}
}

func (f *FakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var sb strings.Builder
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	out, err := f.Call(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: out}},
	}, nil
}

func (f *FakeModel) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.Respond(prompt)
}

func (f *FakeModel) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
