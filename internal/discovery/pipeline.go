// Package discovery finds the high-level product capabilities of a codebase
// and produces a persisted, analyzed feature record for each one. The
// pipeline runs in three steps: list capabilities via the code analyzer,
// analyze each accepted name through the feature stage, then commit all
// results atomically.
package discovery

import (
	"context"
	"fmt"
	"time"

	"prodassist/internal/analyzer"
	"prodassist/internal/llm"
	"prodassist/internal/logging"
	"prodassist/internal/orchestrator"
	"prodassist/internal/store"
	"prodassist/internal/textutil"
	"prodassist/internal/types"
)

const (
	maxSectionChars = 2000
	maxSectionItems = 20
)

// listingInstruction demands a bare numbered list of product domains. The
// heavy repetition is deliberate: the lister drifts into conversation without
// it, and everything it still gets wrong is caught by the validator.
const listingInstruction = `You are a product domain analyst.

Your task is to analyze the codebase and output ONLY a numbered list of high-level product capabilities.

DO NOT ask questions.
DO NOT provide explanations.
DO NOT include conversational text.
Start immediately with the numbered list.

Definition:
A capability is a broad, stable product domain that groups related functionality.

A capability:
- Represents a major functional area of the system
- Groups multiple related features or services
- Would remain stable even if individual features change
- Reflects how the product is structured at a domain level

DO NOT list individual features, endpoints, APIs, or workflows.
DO NOT list low-level technical components.

Group granular functionality into broader domains.

Target:
Return between 5 and 10 capabilities.
Avoid being too granular.

Use clear noun phrases.

OUTPUT FORMAT (MANDATORY):
Start your response immediately with:
1. Capability Name 1
2. Capability Name 2
3. Capability Name 3

DO NOT include:
- Questions or requests for clarification
- Explanations or conversational text
- Status messages like "No capabilities found"
- Format descriptions or instructions
- Quoted text or choices

If no capabilities are found, output nothing (empty response).

Example CORRECT output:
1. User Authentication and Authorization
2. Document Management and Search
3. Legal Analysis and Intelligence
4. Reporting and Analytics
5. System Integration and Data Processing`

func capabilityQuery(name string) string {
	return fmt.Sprintf("Analyze the '%s' feature in this codebase. Provide a comprehensive analysis of what this feature does, its scope, dependencies, considerations, and limitations.", name)
}

// Pipeline wires discovery to its collaborators. A background run must hand
// it a store handle independent of the triggering request's.
type Pipeline struct {
	llm      llm.Client
	analyzer analyzer.Analyzer
	store    *store.Store
}

func NewPipeline(client llm.Client, an analyzer.Analyzer, st *store.Store) *Pipeline {
	return &Pipeline{llm: client, analyzer: an, store: st}
}

// Discover runs the full pipeline for one project. Without force, existing
// features make the run a no-op returning them; with force, prior features
// and their conversations are replaced. A failure analyzing one capability
// skips that capability only; a commit failure aborts the whole batch and is
// the one error propagated to the caller.
func (p *Pipeline) Discover(ctx context.Context, projectID, repoPath string, force bool) ([]*types.DiscoveredFeature, error) {
	existing, err := p.store.ListFeatures(projectID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !force {
		logging.Discovery("features already exist for project %s, skipping discovery", projectID)
		return existing, nil
	}

	timer := logging.StartTimer(logging.CategoryDiscovery, "discover "+projectID)
	defer timer.StopWithInfo()

	output := p.analyzer.Run(ctx, repoPath, listingInstruction)
	names := ParseCapabilities(output)
	if len(names) == 0 {
		logging.DiscoveryWarn("no capabilities discovered for project %s", projectID)
		return nil, nil
	}
	logging.Discovery("discovered %d capabilities for project %s", len(names), projectID)

	var records []store.DiscoveryRecord
	for _, name := range names {
		record, err := p.analyzeCapability(ctx, name, repoPath)
		if err != nil {
			logging.DiscoveryError("analyzing capability %q failed: %v", name, err)
			continue
		}
		record.Conversation.ProjectID = projectID
		records = append(records, *record)
	}

	if err := p.store.CommitDiscovery(projectID, records, force); err != nil {
		return nil, fmt.Errorf("committing discovery for project %s: %w", projectID, err)
	}

	features := make([]*types.DiscoveredFeature, len(records))
	for i := range records {
		features[i] = records[i].Feature
	}
	logging.Discovery("persisted %d features for project %s", len(features), projectID)
	return features, nil
}

// analyzeCapability runs the code analyzer and the feature stage for one
// accepted name and parses the detail text into a feature record paired with
// its conversation.
func (p *Pipeline) analyzeCapability(ctx context.Context, name, repoPath string) (*store.DiscoveryRecord, error) {
	analysis := p.analyzer.Run(ctx, repoPath, capabilityQuery(name))

	stage, err := orchestrator.FeatureStage(ctx, p.llm, capabilityQuery(name), analysis)
	if err != nil {
		return nil, err
	}

	feature := parseDetails(name, stage)
	conversation := &types.Conversation{
		Kind:    types.ConversationDiscoveredFeature,
		Context: stage.Details,
	}
	return &store.DiscoveryRecord{Feature: feature, Conversation: conversation}, nil
}

// parseDetails extracts the structured feature fields from the stage result.
// Missing sections degrade to the overview or empty lists.
func parseDetails(name string, stage *types.FeatureAnalysis) *types.DiscoveredFeature {
	details := stage.Details

	overview := stage.Overview
	if overview == "" {
		overview = textutil.ExtractSection(details, "## Feature Overview")
	}

	scope := ""
	capabilities := textutil.ExtractSection(details, "## Key Capabilities")
	integration := textutil.ExtractSection(details, "## Product Integration")
	switch {
	case capabilities != "" && integration != "":
		scope = capabilities + "\n\n" + integration
	case capabilities != "":
		scope = capabilities
	case integration != "":
		scope = integration
	default:
		scope = overview
	}

	return &types.DiscoveredFeature{
		Name:           name,
		Overview:       textutil.CapText(overview, maxSectionChars),
		Scope:          textutil.CapText(scope, maxSectionChars),
		Dependencies:   textutil.CapItems(textutil.ListItems(textutil.ExtractSection(details, "## Dependencies")), maxSectionItems),
		Considerations: textutil.CapItems(textutil.ListItems(textutil.ExtractSection(details, "## Considerations")), maxSectionItems),
		Limitations:    textutil.CapItems(textutil.ListItems(textutil.ExtractSection(details, "## Limitations")), maxSectionItems),
		DiscoveredAt:   time.Now().UTC(),
	}
}
