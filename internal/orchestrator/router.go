package orchestrator

import (
	"context"
	"strings"

	"prodassist/internal/logging"
	"prodassist/internal/types"
)

// route sets the envelope's request kind. Explicit query/requirement fields
// win outright; otherwise the free-text message is classified by the LLM,
// conservatively when the turn belongs to a conversation that already has
// analysis context. Classification failures fall back to chat and are
// recorded in the trace, never surfaced.
func (c *Coordinator) route(ctx context.Context, env *types.Envelope) {
	if env.Feature != nil && env.Feature.Query != "" {
		env.Kind = types.KindFeature
		env.Tracef("Routing to feature analysis agent")
		return
	}

	if env.Feasibility != nil && env.Feasibility.Requirement != "" {
		env.Kind = types.KindFeasibility
		env.Tracef("Routing to feasibility analysis agent")
		return
	}

	if env.Message == "" {
		env.Kind = types.KindChat
		if env.ConversationID != "" {
			env.Tracef("No message provided, routing to chat")
		} else {
			env.Tracef("No clear intent, routing to chat")
		}
		return
	}

	// LLM classification. Inside an existing analysis conversation the
	// prompt biases toward chat so follow-ups stay conversational.
	var prompt string
	if env.ConversationID != "" && env.AnalysisContext != "" {
		prompt = conservativeRouterPrompt(env.Message)
	} else {
		prompt = openRouterPrompt(env.Message)
	}

	decision, err := c.llm.CompleteWithSystem(ctx, routerSystemPrompt, prompt)
	if err != nil {
		logging.RouterWarn("classification failed, defaulting to chat: %v", err)
		env.Kind = types.KindChat
		env.Tracef("Router error, defaulting to chat: %v", err)
		return
	}

	env.Kind = normalizeRoute(decision)
	env.Tracef("Router determined: %s", env.Kind)
	logging.Router("determined %s for message %.50q", env.Kind, env.Message)

	// An inferred analysis kind adopts the message as its query/requirement.
	switch env.Kind {
	case types.KindFeature:
		if env.Feature == nil || env.Feature.Query == "" {
			env.Feature = &types.FeatureQuery{Query: env.Message}
		}
	case types.KindFeasibility:
		if env.Feasibility == nil || env.Feasibility.Requirement == "" {
			env.Feasibility = &types.FeasibilityRequest{Requirement: env.Message}
		}
	}
}

// normalizeRoute maps the model's one-word answer onto a request kind by
// substring containment. Anything unrecognized is chat.
func normalizeRoute(decision string) types.RequestKind {
	d := strings.ToLower(strings.TrimSpace(decision))
	switch {
	case strings.Contains(d, "feasibility"):
		return types.KindFeasibility
	case strings.Contains(d, "feature") && strings.Contains(d, "analysis"):
		return types.KindFeature
	default:
		return types.KindChat
	}
}
