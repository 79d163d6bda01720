// Package orchestrator is the turn state machine: route the request, prepare
// analysis context, dispatch to the feature, feasibility, or chat stage, and
// persist the outcome. Individual turns always produce a response; every
// stage degrades rather than failing the caller.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prodassist/internal/analyzer"
	"prodassist/internal/llm"
	"prodassist/internal/logging"
	"prodassist/internal/store"
	"prodassist/internal/types"
)

// Coordinator wires the stages to their collaborators.
type Coordinator struct {
	llm      llm.Client
	analyzer analyzer.Analyzer
	store    *store.Store
}

// NewCoordinator creates a turn coordinator.
func NewCoordinator(client llm.Client, an analyzer.Analyzer, st *store.Store) *Coordinator {
	return &Coordinator{llm: client, analyzer: an, store: st}
}

// Run executes one orchestration turn. The envelope is private to the call;
// conversation state is loaded before routing because the router's
// conservative mode depends on existing analysis context.
func (c *Coordinator) Run(ctx context.Context, env *types.Envelope) (*types.TurnResult, error) {
	if err := c.hydrate(env); err != nil {
		return nil, err
	}

	c.route(ctx, env)
	c.prepare(ctx, env)

	result := &types.TurnResult{Kind: env.Kind, ConversationID: env.ConversationID}

	switch env.Kind {
	case types.KindFeature:
		result.Feature = c.runFeature(ctx, env)
		if err := c.persistAnalysis(env, types.ConversationFeature, featureContext(env, result.Feature)); err != nil {
			return nil, err
		}
		result.ConversationID = env.ConversationID

	case types.KindFeasibility:
		result.Feasibility = c.runFeasibility(ctx, env)
		if err := c.persistAnalysis(env, types.ConversationFeasibility, feasibilityContext(env, result.Feasibility)); err != nil {
			return nil, err
		}
		if err := c.store.SaveFeasibility(env.ConversationID, result.Feasibility); err != nil {
			return nil, err
		}
		result.ConversationID = env.ConversationID

	default:
		result.Response = c.runChat(ctx, env)
		if env.ConversationID != "" {
			if err := c.persistChat(env); err != nil {
				return nil, err
			}
		}
	}

	result.Trace = env.Trace
	return result, nil
}

// hydrate fills the envelope from persistence: the project's repo path when
// none was supplied, and the conversation's history and analysis context.
func (c *Coordinator) hydrate(env *types.Envelope) error {
	if env.RepoPath == "" && env.ProjectID != "" {
		p, err := c.store.GetProject(env.ProjectID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if p != nil {
			env.RepoPath = p.RepoPath
		}
	}

	if env.ConversationID != "" {
		conv, err := c.store.GetConversation(env.ConversationID)
		if errors.Is(err, store.ErrNotFound) {
			env.Tracef("Conversation %s not found, starting fresh", env.ConversationID)
			return nil
		}
		if err != nil {
			return err
		}
		env.History = conv.History
		env.AnalysisContext = conv.Context
	}
	return nil
}

// persistAnalysis stores the analysis context snapshot: the existing
// conversation is updated in place (context and kind replaced), or a new one
// is created when the turn arrived without a conversation.
func (c *Coordinator) persistAnalysis(env *types.Envelope, kind, contextSnapshot string) error {
	if env.ConversationID != "" {
		conv, err := c.store.GetConversation(env.ConversationID)
		if err == nil {
			conv.Kind = kind
			conv.Context = contextSnapshot
			if err := c.store.SaveConversation(conv); err != nil {
				return err
			}
			logging.Analysis("updated conversation %s with new %s analysis", conv.ID, kind)
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	conv := &types.Conversation{
		ProjectID: env.ProjectID,
		Kind:      kind,
		Context:   contextSnapshot,
	}
	if err := c.store.SaveConversation(conv); err != nil {
		return err
	}
	env.ConversationID = conv.ID
	logging.Analysis("created conversation %s for %s analysis", conv.ID, kind)
	return nil
}

func (c *Coordinator) persistChat(env *types.Envelope) error {
	conv, err := c.store.GetConversation(env.ConversationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	conv.History = env.History
	return c.store.SaveConversation(conv)
}

// featureContext is the analysis snapshot stored on the conversation after a
// feature turn, grounding follow-up chat.
func featureContext(env *types.Envelope, f *types.FeatureAnalysis) string {
	query := env.Feature.Query
	if query == "" {
		query = env.Message
	}
	return fmt.Sprintf(`Query: %s

Feature Overview:
%s

Feature Details:
%s
`, query, f.Overview, f.Details)
}

// feasibilityContext is the analysis snapshot stored after a feasibility turn.
func feasibilityContext(env *types.Envelope, r *types.FeasibilityResult) string {
	requirement := env.Feasibility.Requirement
	if requirement == "" {
		requirement = env.Message
	}
	extra := env.Feasibility.Context
	if extra == "" {
		extra = "None provided"
	}

	var risks, questions strings.Builder
	for _, risk := range r.Risks {
		fmt.Fprintf(&risks, "- %s\n", risk)
	}
	for _, q := range r.OpenQuestions {
		fmt.Fprintf(&questions, "- %s\n", q)
	}

	return fmt.Sprintf(`Requirement: %s
Context: %s

High-Level Approach:
%s

Feasibility: %s

Risks:
%s
Open Questions:
%s
Estimate: %s
`, requirement, extra, r.Approach, r.Rating, risks.String(), questions.String(), r.RoughEstimate.RawText)
}
