package orchestrator

import (
	"context"
	"strings"

	"prodassist/internal/llm"
	"prodassist/internal/logging"
	"prodassist/internal/textutil"
	"prodassist/internal/types"
)

// FeatureStage runs the feature-analysis transformation: a business-facing
// prompt over the query and (truncated) analysis, whose response is split at
// the Key Capabilities heading into a short overview and the full detail
// text. Exported because the discovery pipeline reuses it per capability.
//
// A generation failure yields a result whose every field is the error
// message, so persistence never sees a partially populated record. The error
// is also returned for callers that skip failed work instead of surfacing
// the degraded result; within a turn it is ignored.
func FeatureStage(ctx context.Context, client llm.Client, query, analysis string) (*types.FeatureAnalysis, error) {
	snippet := textutil.TruncateAnalysis(strings.TrimSpace(analysis))

	response, err := client.CompleteWithSystem(ctx, featureSystemPrompt, featurePrompt(query, snippet))
	if err != nil {
		logging.AnalysisError("feature stage failed: %v", err)
		msg := "Feature Analysis agent failed: " + err.Error()
		return &types.FeatureAnalysis{Overview: msg, Details: msg}, err
	}

	parts := strings.SplitN(response, "## Key Capabilities", 2)
	overview := strings.TrimSpace(strings.Replace(parts[0], "## Feature Overview", "", 1))

	return &types.FeatureAnalysis{
		Overview: overview,
		Details:  strings.TrimSpace(response),
	}, nil
}

func (c *Coordinator) runFeature(ctx context.Context, env *types.Envelope) *types.FeatureAnalysis {
	result, _ := FeatureStage(ctx, c.llm, env.Feature.Query, env.Analysis)
	env.Tracef("Feature analysis completed")
	return result
}
