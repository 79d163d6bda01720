// Package llm provides the language model client used by all analysis and
// chat stages. Production use goes through the Gemini client; everything
// else depends only on the Client interface so tests can script responses.
package llm

import "context"

// Client is the completion interface consumed by the orchestrator stages.
type Client interface {
	// Complete sends a prompt and returns the completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a system message.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
