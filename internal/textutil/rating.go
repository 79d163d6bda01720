package textutil

import (
	"strings"

	"prodassist/internal/types"
)

// ClassifyRating derives a coarse feasibility rating from the rating section
// of a model response. Keyword checks run in priority order so that a
// response mentioning both "high" and "low" resolves deterministically.
func ClassifyRating(section string) types.Rating {
	lower := strings.ToLower(section)
	switch {
	case strings.Contains(lower, "high"):
		return types.RatingHigh
	case strings.Contains(lower, "medium"):
		return types.RatingMedium
	case strings.Contains(lower, "low"):
		return types.RatingLow
	default:
		return types.RatingUnknown
	}
}
