package types

// DefaultMaxHistory is the default cap on conversation history length.
// Keeping only the most recent entries keeps prompts bounded no matter how
// long a conversation runs.
const DefaultMaxHistory = 20

// BoundHistory returns the most recent max entries of history, preserving
// order. It is applied both when history is loaded for a turn and before it
// is persisted; it is idempotent and never mutates its input. max <= 0 means
// unbounded.
func BoundHistory(history []Message, max int) []Message {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
