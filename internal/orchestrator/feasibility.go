package orchestrator

import (
	"context"
	"strings"
	"time"

	"prodassist/internal/logging"
	"prodassist/internal/textutil"
	"prodassist/internal/types"
)

// runFeasibility runs the feasibility transformation and deterministically
// parses the model's sectioned response into the structured result.
func (c *Coordinator) runFeasibility(ctx context.Context, env *types.Envelope) *types.FeasibilityResult {
	req := env.Feasibility
	snippet := textutil.TruncateAnalysis(strings.TrimSpace(env.Analysis))

	response, err := c.llm.CompleteWithSystem(ctx, feasibilitySystemPrompt,
		feasibilityPrompt(req.Requirement, req.Context, snippet))
	if err != nil {
		logging.AnalysisError("feasibility stage failed: %v", err)
		env.Tracef("Feasibility Analysis agent failed: %v", err)
		return feasibilityError(req, err)
	}

	result := parseFeasibility(response)
	result.Requirement = req.Requirement
	result.Context = req.Context
	result.CreatedAt = time.Now().UTC()

	env.Tracef("Feasibility analysis completed")
	return result
}

// parseFeasibility extracts the structured fields from a sectioned response.
// Missing sections yield empty fields, never errors.
func parseFeasibility(response string) *types.FeasibilityResult {
	r := &types.FeasibilityResult{
		// The full response stands in as the approach when no section parses.
		Approach: response,
		Rating:   types.RatingUnknown,
	}

	risksSection := textutil.ExtractSection(response, "## Risks & Challenges")
	if risksSection == "" {
		risksSection = textutil.ExtractSection(response, "## Risks")
	}
	if risksSection != "" {
		r.Risks = textutil.SplitDashItems(risksSection)
	}

	if s := textutil.ExtractSection(response, "## Open Questions"); s != "" {
		r.OpenQuestions = textutil.SplitDashItems(s)
	}

	if s := textutil.ExtractSection(response, "## Feasibility Assessment"); s != "" {
		r.Rating = textutil.ClassifyRating(s)
	}

	if s := textutil.ExtractSection(response, "## Rough Estimate"); s != "" {
		r.RoughEstimate = types.Estimate{RawText: s, Parsed: true}
	}

	if s := textutil.ExtractSection(response, "## High-Level Approach"); s != "" {
		r.Approach = s
	}

	if s := textutil.ExtractSection(response, "## Task Breakdown"); s != "" {
		lower := strings.ToLower(s)
		r.TaskBreakdown = types.TaskBreakdown{
			RawText:        s,
			Parsed:         true,
			Design:         strings.Contains(lower, "design"),
			Spike:          strings.Contains(lower, "spike") || strings.Contains(lower, "research"),
			POC:            strings.Contains(lower, "poc") || strings.Contains(lower, "proof of concept"),
			Implementation: strings.Contains(lower, "implementation"),
			QA:             strings.Contains(lower, "qa") || strings.Contains(lower, "testing") || strings.Contains(lower, "quality assurance"),
		}
	}

	return r
}

// feasibilityError fills every structured field with the error message so a
// failed stage still produces a complete record.
func feasibilityError(req *types.FeasibilityRequest, err error) *types.FeasibilityResult {
	msg := "Feasibility Analysis agent failed: " + err.Error()
	return &types.FeasibilityResult{
		Requirement:   req.Requirement,
		Context:       req.Context,
		Approach:      msg,
		Risks:         []string{msg},
		OpenQuestions: []string{msg},
		Rating:        types.RatingUnknown,
		RoughEstimate: types.Estimate{Error: msg},
		TaskBreakdown: types.TaskBreakdown{Error: msg},
		CreatedAt:     time.Now().UTC(),
	}
}
