package concepts

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/schema"
)

const (
	defaultSamples = 5

	// Groups larger than warnDocsPerGroup degrade the extraction; at
	// maxDocsPerGroup the extractor refuses to run.
	warnDocsPerGroup = 5
	maxDocsPerGroup  = 10
)

// Plan is how a document set is cut into groups.
type Plan struct {
	SampleSize   int
	DocsPerGroup int
	Warn         bool
}

// NewPlan resolves sampleSize against n documents. Zero means five samples
// in total, at least one.
func NewPlan(n, sampleSize int) (Plan, error) {
	if sampleSize < 0 {
		return Plan{}, fmt.Errorf("%w: sample size %d is negative", ErrInvalidArgument, sampleSize)
	}
	if sampleSize > n {
		return Plan{}, fmt.Errorf("%w: sample size %d exceeds document count %d", ErrInvalidArgument, sampleSize, n)
	}
	if sampleSize == 0 {
		sampleSize = max(n/defaultSamples, 1)
	}

	perGroup := (n + sampleSize - 1) / sampleSize
	if perGroup >= maxDocsPerGroup {
		return Plan{}, fmt.Errorf("%w: %d documents per group, use a sample size of at least %d",
			ErrQualityThreshold, perGroup, (n+maxDocsPerGroup-2)/(maxDocsPerGroup-1))
	}

	return Plan{
		SampleSize:   sampleSize,
		DocsPerGroup: perGroup,
		Warn:         perGroup > warnDocsPerGroup,
	}, nil
}

// Groups cuts docs into consecutive runs of DocsPerGroup; the last run may
// be shorter.
func (p Plan) Groups(docs []schema.Document) [][]schema.Document {
	if p.DocsPerGroup <= 0 {
		return nil
	}
	groups := make([][]schema.Document, 0, (len(docs)+p.DocsPerGroup-1)/p.DocsPerGroup)
	for start := 0; start < len(docs); start += p.DocsPerGroup {
		end := min(start+p.DocsPerGroup, len(docs))
		groups = append(groups, docs[start:end])
	}
	return groups
}

// joinGroup concatenates chunk texts without a separator.
func joinGroup(group []schema.Document) string {
	var sb strings.Builder
	for _, doc := range group {
		sb.WriteString(doc.PageContent)
	}
	return sb.String()
}
