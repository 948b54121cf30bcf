package extract

import "errors"

// Validation failures are handled locally by dropping the candidate; the
// pipeline never surfaces them as errors to the caller. They exist as
// sentinels so tests and callers can distinguish the drop reason.
var (
	ErrMalformedAmount   = errors.New("malformed amount")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrEmptyType         = errors.New("empty type")
)
