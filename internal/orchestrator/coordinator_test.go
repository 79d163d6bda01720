package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodassist/internal/store"
	"prodassist/internal/types"
)

// fakeLLM replays scripted responses in call order and records every prompt.
type fakeLLM struct {
	responses []string
	err       error
	calls     []llmCall
}

type llmCall struct {
	system string
	user   string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls = append(f.calls, llmCall{system: systemPrompt, user: userPrompt})
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeLLM: script exhausted")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// fakeAnalyzer counts invocations and returns a fixed analysis.
type fakeAnalyzer struct {
	output       string
	calls        int
	instructions []string
}

func (f *fakeAnalyzer) Run(ctx context.Context, repoPath, instructions string) string {
	f.calls++
	f.instructions = append(f.instructions, instructions)
	return f.output
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:", 20)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

const featureResponse = `## Feature Overview
Billing charges customers monthly based on usage.

## Key Capabilities
- Invoice generation
- Payment retries

## Product Integration
Hooks into the subscription lifecycle.`

func TestRunFeatureTurnCreatesConversation(t *testing.T) {
	st := newTestStore(t)
	client := &fakeLLM{responses: []string{"feature_analysis", featureResponse}}
	an := &fakeAnalyzer{output: "The billing module lives in internal/billing."}
	coord := NewCoordinator(client, an, st)

	env := &types.Envelope{
		RepoPath: t.TempDir(),
		Message:  "How does the billing feature work?",
	}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, types.KindFeature, result.Kind)
	require.NotNil(t, result.Feature)
	assert.Equal(t, "Billing charges customers monthly based on usage.", result.Feature.Overview)
	assert.Contains(t, result.Feature.Details, "## Key Capabilities")
	assert.Nil(t, result.Feasibility)
	assert.Empty(t, result.Response)

	// The slow analyzer runs exactly once per turn.
	assert.Equal(t, 1, an.calls)
	assert.Contains(t, an.instructions[0], "How does the billing feature work?")

	// A conversation was created carrying the analysis snapshot.
	require.NotEmpty(t, result.ConversationID)
	conv, err := st.GetConversation(result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, types.ConversationFeature, conv.Kind)
	assert.Contains(t, conv.Context, "Query: How does the billing feature work?")
	assert.Contains(t, conv.Context, "Feature Overview:")
}

func TestRunFollowUpChatUsesContext(t *testing.T) {
	st := newTestStore(t)
	an := &fakeAnalyzer{output: "analysis"}

	// First turn: feature analysis.
	first := &fakeLLM{responses: []string{"feature_analysis", featureResponse}}
	coord := NewCoordinator(first, an, st)
	env := &types.Envelope{RepoPath: t.TempDir(), Message: "How does the billing feature work?"}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)
	require.NotEmpty(t, result.ConversationID)

	// Second turn on the same conversation: a follow-up question routes to
	// chat via the conservative classifier and sees the stored context.
	second := &fakeLLM{responses: []string{"chat", "They are handled by the retry queue."}}
	coord = NewCoordinator(second, an, st)
	env = &types.Envelope{
		ConversationID: result.ConversationID,
		Message:        "What about edge cases?",
	}
	followUp, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, types.KindChat, followUp.Kind)
	assert.Equal(t, "They are handled by the retry queue.", followUp.Response)
	assert.Equal(t, result.ConversationID, followUp.ConversationID)

	// Conservative routing: the classifier prompt warns against re-analysis.
	require.Len(t, second.calls, 2)
	assert.Contains(t, second.calls[0].user, `Default to "chat"`)
	// The chat prompt carries the prior analysis snapshot.
	assert.Contains(t, second.calls[1].user, "Previous Analysis Context:")
	assert.Contains(t, second.calls[1].user, "Feature Overview:")

	// The analyzer was not re-run for the chat turn.
	assert.Equal(t, 1, an.calls)

	// The exchange was appended to the stored history.
	conv, err := st.GetConversation(result.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.History, 2)
	assert.Equal(t, types.RoleUser, conv.History[0].Role)
	assert.Equal(t, "What about edge cases?", conv.History[0].Content)
	assert.Equal(t, types.RoleAssistant, conv.History[1].Role)
}

const feasibilityResponse = `## High-Level Approach
Add a webhook receiver and a signing-secret check.

## Feasibility Assessment
High feasibility given the existing HTTP layer.

## Risks & Challenges
- Secret rotation is manual
- Replay attacks without nonce tracking

## Open Questions
- Which events must be supported?

## Rough Estimate
2-3 weeks for one engineer.

## Task Breakdown
Design the endpoint, then implementation, then QA.`

func TestRunFeasibilityTurnPersistsResult(t *testing.T) {
	st := newTestStore(t)
	client := &fakeLLM{responses: []string{feasibilityResponse}}
	an := &fakeAnalyzer{output: "HTTP handlers live in internal/api."}
	coord := NewCoordinator(client, an, st)

	env := &types.Envelope{
		RepoPath:    t.TempDir(),
		Feasibility: &types.FeasibilityRequest{Requirement: "Can we add webhook support?"},
	}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	// Explicit requirement: no router call, straight to the stage.
	require.Len(t, client.calls, 1)
	assert.Equal(t, types.KindFeasibility, result.Kind)
	require.NotNil(t, result.Feasibility)
	assert.Equal(t, types.RatingHigh, result.Feasibility.Rating)
	assert.Len(t, result.Feasibility.Risks, 2)
	assert.True(t, result.Feasibility.TaskBreakdown.Design)
	assert.True(t, result.Feasibility.TaskBreakdown.QA)
	assert.False(t, result.Feasibility.TaskBreakdown.Spike)

	require.NotEmpty(t, result.ConversationID)
	conv, err := st.GetConversation(result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, types.ConversationFeasibility, conv.Kind)
	assert.Contains(t, conv.Context, "Requirement: Can we add webhook support?")
	assert.Contains(t, conv.Context, "Feasibility: High")

	saved, err := st.ListFeasibilities(result.ConversationID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Can we add webhook support?", saved[0].Requirement)
}

func TestRunAnalysisTurnUpdatesConversationInPlace(t *testing.T) {
	st := newTestStore(t)
	an := &fakeAnalyzer{output: "analysis"}

	first := &fakeLLM{responses: []string{"feature_analysis", featureResponse}}
	env := &types.Envelope{RepoPath: t.TempDir(), Message: "How does billing work?"}
	result, err := NewCoordinator(first, an, st).Run(context.Background(), env)
	require.NoError(t, err)

	second := &fakeLLM{responses: []string{feasibilityResponse}}
	env = &types.Envelope{
		ConversationID: result.ConversationID,
		RepoPath:       t.TempDir(),
		Feasibility:    &types.FeasibilityRequest{Requirement: "Can we split invoices?"},
	}
	_, err = NewCoordinator(second, an, st).Run(context.Background(), env)
	require.NoError(t, err)

	// Same conversation row, new kind and context.
	conv, err := st.GetConversation(result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, types.ConversationFeasibility, conv.Kind)
	assert.Contains(t, conv.Context, "Can we split invoices?")
	assert.NotContains(t, conv.Context, "Feature Overview:")
}

func TestRunChatWithoutConversationDoesNotPersist(t *testing.T) {
	st := newTestStore(t)
	client := &fakeLLM{responses: []string{"chat", "Hello!"}}
	coord := NewCoordinator(client, &fakeAnalyzer{}, st)

	env := &types.Envelope{Message: "Hi there"}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, types.KindChat, result.Kind)
	assert.Equal(t, "Hello!", result.Response)
	assert.Empty(t, result.ConversationID)
}

func TestRunResolvesRepoPathFromProject(t *testing.T) {
	st := newTestStore(t)
	repoPath := t.TempDir()
	project := &types.Project{Name: "billing-svc", RepoPath: repoPath}
	require.NoError(t, st.CreateProject(project))

	client := &fakeLLM{responses: []string{featureResponse}}
	an := &fakeAnalyzer{output: "analysis"}
	coord := NewCoordinator(client, an, st)

	env := &types.Envelope{
		ProjectID: project.ID,
		Feature:   &types.FeatureQuery{Query: "How does billing work?"},
	}
	_, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	// The repo path came from the project record, so the analyzer ran.
	assert.Equal(t, 1, an.calls)
	assert.Equal(t, repoPath, env.RepoPath)
}

func TestRunUnknownConversationStartsFresh(t *testing.T) {
	st := newTestStore(t)
	client := &fakeLLM{responses: []string{"chat", "Sure."}}
	coord := NewCoordinator(client, &fakeAnalyzer{}, st)

	env := &types.Envelope{ConversationID: "missing", Message: "Hello"}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, "Sure.", result.Response)
	traced := strings.Join(result.Trace, "\n")
	assert.Contains(t, traced, "not found, starting fresh")
}

func TestRunLLMFailureStillReturnsResult(t *testing.T) {
	st := newTestStore(t)
	client := &fakeLLM{err: errors.New("quota exceeded")}
	coord := NewCoordinator(client, &fakeAnalyzer{}, st)

	env := &types.Envelope{Message: "How does billing work?"}
	result, err := coord.Run(context.Background(), env)
	require.NoError(t, err)

	// Router failure defaults to chat, and the chat failure is the reply.
	assert.Equal(t, types.KindChat, result.Kind)
	assert.Contains(t, result.Response, "Chat agent failed:")
	traced := strings.Join(result.Trace, "\n")
	assert.Contains(t, traced, "Router error, defaulting to chat")
}
