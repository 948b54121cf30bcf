package pipeline

// Defaults for statement analysis. These can be overridden via configuration
// or environment variables in the future.
const (
	// DefaultModelName is the default Gemini model used for extraction.
	DefaultModelName = "gemini-2.5-flash"

	// SourcePatternLabel and SourceModelLabel name the two extraction paths
	// in run records and logs.
	SourcePatternLabel = "PATTERN"
	SourceModelLabel   = "GEMINI_TEXT"
)
