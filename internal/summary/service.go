// Package summary generates a business-facing project summary, purpose
// statement, and tech stack from a repository. The code analyzer supplies a
// product-level overview, key manifest and readme files supply the ground
// truth, and the LLM condenses both into three fixed sections.
package summary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"prodassist/internal/analyzer"
	"prodassist/internal/llm"
	"prodassist/internal/logging"
	"prodassist/internal/repo"
	"prodassist/internal/store"
	"prodassist/internal/textutil"
	"prodassist/internal/types"
)

const (
	maxKeyFiles       = 10
	maxKeyFileChars   = 2000
	maxAnalysisChars  = 3000
	maxKeyFilesChars  = 5000
	maxOverviewDirs   = 20
	maxTechStackItems = 50
)

// keyFileNames are the manifests and docs worth feeding to the summarizer.
var keyFileNames = map[string]bool{
	"package.json":       true,
	"requirements.txt":   true,
	"pyproject.toml":     true,
	"Pipfile":            true,
	"go.mod":             true,
	"Cargo.toml":         true,
	"pom.xml":            true,
	"build.gradle":       true,
	"README.md":          true,
	"README.rst":         true,
	"README.txt":         true,
	".gitignore":         true,
	"Dockerfile":         true,
	"docker-compose.yml": true,
	"Makefile":           true,
}

// Service generates and persists project summaries.
type Service struct {
	llm      llm.Client
	analyzer analyzer.Analyzer
	store    *store.Store
}

func NewService(client llm.Client, an analyzer.Analyzer, st *store.Store) *Service {
	return &Service{llm: client, analyzer: an, store: st}
}

// Generate produces the summary for a project and updates the project record.
// Failures degrade to an empty result; summaries are advisory and never block
// the caller.
func (s *Service) Generate(ctx context.Context, project *types.Project) types.ProjectSummary {
	logging.Summary("generating summary for project %s", project.ID)
	timer := logging.StartTimer(logging.CategorySummary, "summarize "+project.ID)
	defer timer.StopWithInfo()

	structure := repo.Structure(project.RepoPath)
	keyFiles := collectKeyFiles(project.RepoPath, structure)
	analysis := s.analyzer.Run(ctx, project.RepoPath, overviewInstruction)

	response, err := s.llm.CompleteWithSystem(ctx, summarySystemPrompt,
		summaryPrompt(project.Name, analysis, keyFiles, structure))
	if err != nil {
		logging.SummaryWarn("summary generation failed for project %s: %v", project.ID, err)
		return types.ProjectSummary{}
	}

	result := parseSummary(response)

	if err := s.store.UpdateProjectSummary(project.ID, result); err != nil {
		logging.SummaryWarn("failed to persist summary for project %s: %v", project.ID, err)
		return types.ProjectSummary{}
	}
	logging.Summary("summary persisted for project %s", project.ID)
	return result
}

// collectKeyFiles reads the recognized manifest and doc files from the
// working tree, each capped, at most maxKeyFiles of them.
func collectKeyFiles(repoPath string, structure *types.RepoStructure) string {
	var sections []string
	for _, rel := range structure.Files {
		if !keyFileNames[filepath.Base(rel)] {
			continue
		}
		content, err := os.ReadFile(filepath.Join(repoPath, rel))
		if err != nil {
			logging.SummaryWarn("failed to read key file %s: %v", rel, err)
			continue
		}
		text := string(content)
		if len(text) > maxKeyFileChars {
			text = text[:maxKeyFileChars] + "\n[Truncated...]"
		}
		sections = append(sections, fmt.Sprintf("File: %s\n%s\n", rel, text))
		if len(sections) == maxKeyFiles {
			break
		}
	}
	return strings.Join(sections, "\n---\n")
}

// parseSummary extracts the three fixed sections from the model response.
// Missing sections yield empty fields.
func parseSummary(response string) types.ProjectSummary {
	result := types.ProjectSummary{
		Summary: textutil.ExtractSection(response, "## Project Summary"),
		Purpose: textutil.ExtractSection(response, "## Project Purpose"),
	}
	if stack := textutil.ExtractSection(response, "## Tech Stack"); stack != "" {
		result.TechStack = textutil.CapItems(textutil.ListItems(stack), maxTechStackItems)
	}
	return result
}
