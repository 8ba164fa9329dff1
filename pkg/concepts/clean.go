package concepts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/xhad/conceptube/internal/models"
)

// Greedy: first '{' up to the last '}' of the response.
var jsonSpanRE = regexp.MustCompile(`(?s)^.*?(\{.*\}).*$`)

// CleanJSON strips any text around the JSON object in a model response.
// It reports false when the response has no brace-delimited span.
func CleanJSON(response string) (string, bool) {
	m := jsonSpanRE.FindStringSubmatch(response)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseConcepts decodes a cleaned response. String values are used as
// definitions; any other value is kept as its compact JSON text.
func ParseConcepts(cleaned string) (models.ConceptMap, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	concepts := make(models.ConceptMap, len(raw))
	for name, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			concepts[name] = s
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		concepts[name] = buf.String()
	}
	return concepts, nil
}
