package app

// Output format constants
const (
	// FormatJSON represents JSON output format
	FormatJSON = "json"
	// FormatText represents human-readable text output format
	FormatText = "text"
)
