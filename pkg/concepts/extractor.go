// Package concepts extracts key concepts and their definitions from
// transcript chunks with a generative model.
package concepts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/internal/progress"
	"github.com/xhad/conceptube/pkg/llm"
	"github.com/xhad/conceptube/pkg/metrics"
)

const conceptTemplate = `Find and define key concepts and definitions found in the following text:
{text}
Respond only in clean JSON format without any labels or additional text. The output needs to look exactly like this:
{{"concept1": "definition1", "concept2": "definition2", ...}}`

// ConceptPrompt renders the extraction prompt for one group of text.
var ConceptPrompt = prompts.PromptTemplate{
	Template:       conceptTemplate,
	InputVariables: []string{"text"},
	TemplateFormat: prompts.TemplateFormatFString,
}

type ExtractorConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Progress io.Writer // progress bar output; nil disables it
}

// Extractor sends groups of documents to the model and collects one
// ConceptMap per group.
type Extractor struct {
	engine   *llm.Engine
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress io.Writer
}

func NewExtractor(engine *llm.Engine, config ExtractorConfig) *Extractor {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Extractor{
		engine:   engine,
		logger:   config.Logger,
		metrics:  config.Metrics,
		progress: config.Progress,
	}
}

// Extract returns the concept maps of docs in group order. Groups whose
// response holds no JSON object are left out.
func (e *Extractor) Extract(ctx context.Context, docs []schema.Document, sampleSize int, verbose bool) ([]models.ConceptMap, error) {
	if len(docs) == 0 {
		e.logger.Error("no documents to extract concepts from")
		return []models.ConceptMap{}, nil
	}

	plan, err := NewPlan(len(docs), sampleSize)
	if err != nil {
		return nil, err
	}
	if plan.Warn {
		e.logger.Warn("too many documents per group, concept quality may suffer",
			slog.Int("docs_per_group", plan.DocsPerGroup),
			slog.Int("sample_size", plan.SampleSize))
	}

	groups := plan.Groups(docs)
	e.logger.Info("extracting key concepts",
		slog.Int("documents", len(docs)),
		slog.Int("groups", len(groups)),
		slog.Int("docs_per_group", plan.DocsPerGroup))

	bar := progress.NewBar(e.progress, len(groups), "Extracting concepts")

	var total GroupCost
	results := make([]models.ConceptMap, 0, len(groups))
	for i, group := range groups {
		concepts, cost, err := e.extractGroup(ctx, group)
		if err != nil {
			_ = bar.Exit()
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		_ = bar.Add(1)

		total.Add(cost)
		if verbose {
			e.logger.Info("group cost",
				slog.Int("group", i),
				slog.Int("input_chars", cost.InputChars),
				slog.Float64("input_cost", cost.InputCost),
				slog.Int("output_chars", cost.OutputChars),
				slog.Float64("output_cost", cost.OutputCost),
				slog.Float64("group_cost", cost.Total()))
		}

		if concepts == nil {
			e.metrics.ObserveDroppedGroup()
			e.logger.Debug("dropping group without JSON in response", slog.Int("group", i))
			continue
		}
		results = append(results, concepts)
	}
	_ = bar.Finish()

	if verbose {
		e.logger.Info("total cost",
			slog.Float64("input_cost", total.InputCost),
			slog.Float64("output_cost", total.OutputCost),
			slog.Float64("total_cost", total.Total()))
	}

	return results, nil
}

// extractGroup returns a nil map when the response has no JSON span.
func (e *Extractor) extractGroup(ctx context.Context, group []schema.Document) (models.ConceptMap, GroupCost, error) {
	prompt, err := ConceptPrompt.Format(map[string]any{"text": joinGroup(group)})
	if err != nil {
		return nil, GroupCost{}, fmt.Errorf("render prompt: %w", err)
	}

	response, err := e.engine.Generate(ctx, prompt)
	if err != nil {
		return nil, GroupCost{}, err
	}

	cost := EstimateCost(utf8.RuneCountInString(prompt), utf8.RuneCountInString(response))
	e.metrics.ObserveModelCall(cost.InputCost, cost.OutputCost)

	cleaned, ok := CleanJSON(response)
	if !ok {
		return nil, cost, nil
	}
	concepts, err := ParseConcepts(cleaned)
	if err != nil {
		return nil, cost, err
	}
	return concepts, cost, nil
}
