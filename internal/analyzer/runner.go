// Package analyzer runs deep repository analysis through the Codex CLI as a
// read-only subprocess.
//
// IMPORTANT: Codex is used as a SUBPROCESS analysis tool, NOT as an agent.
// - Sandbox is always read-only; the repository is never mutated
// - Single invocation per analysis, no agentic loops
// - Failures degrade to an empty analysis rather than an error, so a broken
//   or missing CLI never blocks a conversation turn
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"prodassist/internal/logging"
)

// Analyzer produces a repository analysis for a set of instructions.
// Implemented by Runner in production; tests substitute scripted fakes.
type Analyzer interface {
	Run(ctx context.Context, repoPath, instructions string) string
}

// Runner invokes the Codex CLI against a local repository checkout.
// Every run tries the primary model first and the fallback model exactly
// once; both failing yields an empty analysis.
type Runner struct {
	command       string
	model         string
	fallbackModel string
	sandbox       string
	timeout       time.Duration
}

// Config configures a Runner.
type Config struct {
	Command       string
	Model         string
	FallbackModel string
	Sandbox       string
	Timeout       time.Duration
}

// NewRunner creates a Codex CLI runner with defaults applied.
func NewRunner(cfg Config) *Runner {
	r := &Runner{
		command: "codex",
		model:   "gpt-5-codex",
		sandbox: "read-only",
		timeout: 300 * time.Second,
	}
	if cfg.Command != "" {
		r.command = cfg.Command
	}
	if cfg.Model != "" {
		r.model = cfg.Model
	}
	r.fallbackModel = cfg.FallbackModel
	if cfg.Sandbox != "" {
		r.sandbox = cfg.Sandbox
	}
	if cfg.Timeout > 0 {
		r.timeout = cfg.Timeout
	}
	return r
}

// Run executes the analyzer against repoPath with the given instructions and
// returns the analysis text. Run never returns an error: any failure is
// logged and surfaces as an empty string, which callers treat as a warning.
func (r *Runner) Run(ctx context.Context, repoPath, instructions string) string {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "codex analysis")
	defer timer.StopWithInfo()

	out, err := r.execute(ctx, repoPath, instructions, r.model)
	if err == nil {
		return out
	}
	logging.AnalyzerWarn("model %s failed: %v", r.model, err)

	if r.fallbackModel == "" {
		return ""
	}

	out, err = r.execute(ctx, repoPath, instructions, r.fallbackModel)
	if err != nil {
		logging.AnalyzerWarn("fallback model %s failed: %v", r.fallbackModel, err)
		return ""
	}
	return out
}

// execute runs one codex invocation with the instructions piped to stdin.
func (r *Runner) execute(ctx context.Context, repoPath, instructions, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The trailing "-" tells codex to read the prompt from stdin.
	args := []string{
		"exec",
		"-C", repoPath,
		"--sandbox", r.sandbox,
		"--color", "never",
		"--model", model,
		"-",
	}

	cmd := exec.CommandContext(ctx, r.command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", err
	}

	if _, err := io.WriteString(stdin, instructions); err != nil {
		return "", err
	}
	if err := stdin.Close(); err != nil {
		return "", err
	}

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("analyzer timed out after " + r.timeout.String())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.New(msg)
		}
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}
