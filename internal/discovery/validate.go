package discovery

import (
	"regexp"
	"strings"
)

// The capability lister is an instruction-following subprocess; when it drifts
// it emits conversation, status messages, or echoes of its own instructions.
// These tables are the rejection policy for those failure modes. Tuned against
// observed bad outputs; extend rather than rewrite.

// conversationalStarters reject output whose first line opens a conversation
// instead of a list, and capability names that begin conversationally.
var conversationalStarters = []string{
	"i'm", "i am", "i see", "i need", "i want", "i have",
	"you've", "you have", "you're", "you are",
	"which", "what", "how", "when", "where", "why",
	"please", "can you", "could you", "would you",
	"let me", "allow me", "excuse me",
}

// namePrefixes reject names that start like a request rather than a noun phrase.
var namePrefixes = []string{
	"please tell me",
	"please",
	"tell me",
	"what is",
	"what are",
	"can you",
	"could you",
	"would you",
	"how do",
	"how does",
	"i need",
	"i want",
	"show me",
	"give me",
	"help me",
}

// statusPhrases reject "nothing found" messages masquerading as list items.
var statusPhrases = []string{
	"no user-facing features",
	"no features detected",
	"no features found",
	"no feature",
	"features not found",
	"no capabilities",
	"unable to find",
	"cannot find",
}

// instructionPhrases reject echoes of the listing instruction itself.
var instructionPhrases = []string{
	"numbered list",
	"output format",
	"provide a",
	"only output",
	"nothing else",
	"example output",
	"feature name",
	"product analysis sections",
	"product analysis format",
	"section product analysis",
	"section format",
	"full product",
	"sections (",
	"format:",
	"output:",
	"rules:",
	"task:",
	"important:",
	"do not",
	"avoid listing",
	"focus on",
	"group related",
	"use clear",
	"list features",
}

var questionStarters = []string{"what", "where", "when", "why", "who", "how", "which", "whose"}

var hasLetter = regexp.MustCompile(`[a-zA-Z]`)

// ValidName reports whether a candidate capability name looks like an actual
// product capability rather than leaked prompt text, a status message, or a
// conversational fragment.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return false
	}
	lower := strings.ToLower(name)

	for _, prefix := range namePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	for _, phrase := range statusPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	if (strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`)) ||
		(strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'")) {
		return false
	}

	for _, phrase := range instructionPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	// Format descriptions pair "section"/"analysis" with "format".
	if (strings.Contains(lower, "section") || strings.Contains(lower, "analysis")) &&
		strings.Contains(lower, "format") {
		return false
	}

	if strings.HasSuffix(name, "?") {
		return false
	}

	if strings.Contains(name, ":") && containsAny(lower, "format", "output", "example", "rule", "task", "please", "tell") {
		return false
	}

	// Short colon-terminated strings are prompts, not names. Longer ones like
	// "User Management: Admin Panel" pass unless they carry interrogatives.
	if strings.HasSuffix(name, ":") && len(name) < 30 {
		if len(name) < 15 || containsAny(lower, "please", "tell", "what", "how", "can", "could") {
			return false
		}
	}

	for _, prefix := range []string{"1.", "2.", "3.", "feature name", "example"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	if !hasLetter.MatchString(name) {
		return false
	}

	for _, q := range questionStarters {
		if strings.HasPrefix(lower, q+" ") {
			return false
		}
	}

	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// conversationalFirstLine reports whether the lister's first output line opens
// a conversation, which invalidates the whole output.
func conversationalFirstLine(output string) bool {
	first, _, _ := strings.Cut(output, "\n")
	first = strings.ToLower(strings.TrimSpace(first))
	for _, starter := range conversationalStarters {
		if strings.HasPrefix(first, starter) {
			return true
		}
	}
	return false
}
