package concepts

import "errors"

var (
	// ErrInvalidArgument is returned for a sample size outside 0..len(docs).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrQualityThreshold is returned when groups would hold too many
	// documents for the model to cover them well.
	ErrQualityThreshold = errors.New("quality threshold exceeded")

	// ErrMalformedOutput is returned when the JSON span of a model
	// response does not parse.
	ErrMalformedOutput = errors.New("malformed model output")
)
