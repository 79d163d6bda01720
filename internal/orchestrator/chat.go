package orchestrator

import (
	"context"
	"strings"
	"time"

	"prodassist/internal/logging"
	"prodassist/internal/types"
)

// runChat builds the conversational prompt from prior analysis context, the
// bounded history, and the new message, then appends the exchanged pair to
// the envelope's history. A generation failure becomes the visible reply;
// chat never fails the turn.
func (c *Coordinator) runChat(ctx context.Context, env *types.Envelope) string {
	prompt := chatPrompt(env.AnalysisContext, env.History, env.Message)

	response, err := c.llm.CompleteWithSystem(ctx, chatSystemPrompt, prompt)
	if err != nil {
		logging.Get(logging.CategoryChat).Error("chat stage failed: %v", err)
		response = "Chat agent failed: " + err.Error()
		env.Tracef("%s", response)
	} else {
		env.Tracef("Chat response generated")
	}

	now := time.Now().UTC()
	env.History = append(env.History,
		types.Message{Role: types.RoleUser, Content: env.Message, Timestamp: now},
		types.Message{Role: types.RoleAssistant, Content: response, Timestamp: now},
	)

	return response
}

func chatPrompt(analysisContext string, history []types.Message, message string) string {
	var b strings.Builder

	if analysisContext != "" {
		b.WriteString("Previous Analysis Context:\n")
		b.WriteString(analysisContext)
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation History:\n")
		for _, msg := range history {
			label := "Assistant"
			if msg.Role == types.RoleUser {
				label = "Product Manager"
			}
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("Product Manager: ")
	b.WriteString(message)
	b.WriteString("\n\nAssistant:")

	return b.String()
}
