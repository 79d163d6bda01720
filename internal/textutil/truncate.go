package textutil

const (
	// MaxAnalysisChars bounds the repository analysis carried into prompts.
	MaxAnalysisChars = 6000

	// TruncationMarker is appended when an analysis is cut at the bound so
	// downstream consumers can tell the text is incomplete.
	TruncationMarker = "\n\n[Truncated: analysis exceeded 6000 characters]"
)

// TruncateAnalysis bounds analysis text for prompt embedding. Empty input
// becomes "N/A" so prompts never carry a blank analysis block; oversized
// input is cut at MaxAnalysisChars with the truncation marker appended.
func TruncateAnalysis(text string) string {
	if text == "" {
		return "N/A"
	}
	if len(text) <= MaxAnalysisChars {
		return text
	}
	return text[:MaxAnalysisChars] + TruncationMarker
}
