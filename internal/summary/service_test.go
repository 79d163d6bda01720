package summary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodassist/internal/store"
	"prodassist/internal/types"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	return f.response, f.err
}

type fakeAnalyzer struct {
	output string
	calls  int
}

func (f *fakeAnalyzer) Run(ctx context.Context, repoPath, instructions string) string {
	f.calls++
	return f.output
}

const summaryResponse = `## Project Summary
A billing platform that automates invoicing for subscription businesses.

## Project Purpose
Exists to remove manual invoicing work for finance teams.

## Tech Stack
- Go
- SQLite
- Gemini API`

func newTestProject(t *testing.T, st *store.Store) *types.Project {
	t.Helper()
	p := &types.Project{Name: "billing-svc", RepoPath: t.TempDir()}
	require.NoError(t, st.CreateProject(p))
	return p
}

func TestGenerate(t *testing.T) {
	st, err := store.New(":memory:", 20)
	require.NoError(t, err)
	defer st.Close()
	project := newTestProject(t, st)

	require.NoError(t, os.WriteFile(filepath.Join(project.RepoPath, "go.mod"), []byte("module billing\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project.RepoPath, "README.md"), []byte("# Billing\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project.RepoPath, "main.go"), []byte("package main\n"), 0o644))

	client := &fakeLLM{response: summaryResponse}
	an := &fakeAnalyzer{output: "Automates invoicing."}
	svc := NewService(client, an, st)

	result := svc.Generate(context.Background(), project)
	assert.Equal(t, "A billing platform that automates invoicing for subscription businesses.", result.Summary)
	assert.Equal(t, "Exists to remove manual invoicing work for finance teams.", result.Purpose)
	assert.Equal(t, []string{"Go", "SQLite", "Gemini API"}, result.TechStack)
	assert.Equal(t, 1, an.calls)

	// The prompt carries the key files but not arbitrary source files.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "File: go.mod")
	assert.Contains(t, client.prompts[0], "File: README.md")
	assert.NotContains(t, client.prompts[0], "File: main.go")
	assert.Contains(t, client.prompts[0], "Project Name: billing-svc")

	// The project record was updated.
	updated, err := st.GetProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Summary, updated.Summary)
	assert.Equal(t, result.Purpose, updated.Purpose)
	assert.Equal(t, result.TechStack, updated.TechStack)
}

func TestGenerateLLMFailureReturnsEmpty(t *testing.T) {
	st, err := store.New(":memory:", 20)
	require.NoError(t, err)
	defer st.Close()
	project := newTestProject(t, st)

	client := &fakeLLM{err: errors.New("quota exceeded")}
	svc := NewService(client, &fakeAnalyzer{}, st)

	result := svc.Generate(context.Background(), project)
	assert.Equal(t, types.ProjectSummary{}, result)

	updated, err := st.GetProject(project.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Summary)
}

func TestCollectKeyFilesCaps(t *testing.T) {
	dir := t.TempDir()
	big := strings.Repeat("x", maxKeyFileChars+100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(big), 0o644))

	structure := &types.RepoStructure{Files: []string{"README.md"}}
	out := collectKeyFiles(dir, structure)

	assert.Contains(t, out, "[Truncated...]")
	assert.NotContains(t, out, big)
}

func TestSummaryPromptFallbacks(t *testing.T) {
	prompt := summaryPrompt("", "", "", &types.RepoStructure{})
	assert.Contains(t, prompt, "Project Name: Not specified")
	assert.Contains(t, prompt, "No codebase analysis available.")
	assert.Contains(t, prompt, "No key files found.")
}

func TestParseSummaryMissingSections(t *testing.T) {
	result := parseSummary("Some freeform text with no headings.")
	assert.Empty(t, result.Summary)
	assert.Empty(t, result.Purpose)
	assert.Empty(t, result.TechStack)
}
