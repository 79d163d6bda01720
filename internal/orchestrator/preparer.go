package orchestrator

import (
	"context"
	"fmt"

	"prodassist/internal/logging"
	"prodassist/internal/repo"
	"prodassist/internal/types"
)

// prepare stages context for analysis turns. It computes the repository
// structure if missing, then invokes the code analyzer at most once when a
// query or requirement is present and no analysis is cached yet. An empty
// analyzer result is a warning, not an error; downstream stages substitute
// "N/A" for an absent analysis.
func (c *Coordinator) prepare(ctx context.Context, env *types.Envelope) {
	if !env.Kind.IsAnalysis() {
		return
	}

	if env.RepoPath != "" && env.Structure == nil {
		env.Structure = repo.Structure(env.RepoPath)
	}

	var query, requirement, extra string
	if env.Feature != nil {
		query = env.Feature.Query
	}
	if env.Feasibility != nil {
		requirement = env.Feasibility.Requirement
		extra = env.Feasibility.Context
	}

	if (query == "" && requirement == "") || env.Analysis != "" || env.RepoPath == "" {
		env.Tracef("Analysis preparation completed")
		return
	}

	fullQuery := query
	if fullQuery == "" {
		fullQuery = fmt.Sprintf("%s\n\nContext: %s", requirement, extra)
	}

	logging.Preparer("running code analysis for %s", env.Kind)
	env.Analysis = c.analyzer.Run(ctx, env.RepoPath, analysisInstruction(fullQuery))
	if env.Analysis == "" {
		logging.PreparerWarn("code analysis returned empty output")
	}
	env.Tracef("Analysis preparation completed")
}
