// Package repo manages local checkouts of project repositories and derives
// the lightweight structure snapshot the preparer embeds in prompts. Git is
// driven through the git binary; there is no in-process git implementation.
package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"prodassist/internal/logging"
)

// Provider clones and updates repositories under a common base path.
type Provider struct {
	basePath string
	branch   string
}

// NewProvider creates a repository provider. branch defaults to main.
func NewProvider(basePath, branch string) *Provider {
	if branch == "" {
		branch = "main"
	}
	return &Provider{basePath: basePath, branch: branch}
}

// LocalPath returns where a repository with the given name is checked out.
func (p *Provider) LocalPath(name string) string {
	return filepath.Join(p.basePath, name)
}

// Ensure makes sure a usable checkout of gitURL exists for the named project
// and returns its path. An existing checkout is updated with a pull; a
// missing or broken one is cloned fresh.
func (p *Provider) Ensure(ctx context.Context, name, gitURL string) (string, error) {
	path := p.LocalPath(name)

	if p.isRepo(path) {
		if err := p.pull(ctx, path); err != nil {
			logging.RepoWarn("pull failed for %s, re-cloning: %v", name, err)
			if err := os.RemoveAll(path); err != nil {
				return "", fmt.Errorf("failed to remove broken checkout: %w", err)
			}
			if err := p.clone(ctx, gitURL, path); err != nil {
				return "", err
			}
		}
		return path, nil
	}

	if err := p.clone(ctx, gitURL, path); err != nil {
		return "", err
	}
	return path, nil
}

func (p *Provider) isRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func (p *Provider) clone(ctx context.Context, gitURL, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create base path: %w", err)
	}

	logging.Repo("cloning %s into %s (branch %s)", gitURL, path, p.branch)
	if err := p.git(ctx, "", "clone", "--branch", p.branch, "--single-branch", gitURL, path); err != nil {
		return fmt.Errorf("failed to clone %s: %w", gitURL, err)
	}
	return nil
}

func (p *Provider) pull(ctx context.Context, path string) error {
	if err := p.git(ctx, path, "fetch", "origin", p.branch); err != nil {
		return err
	}
	if err := p.git(ctx, path, "checkout", p.branch); err != nil {
		return err
	}
	return p.git(ctx, path, "reset", "--hard", "origin/"+p.branch)
}

func (p *Provider) git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("git %s: %s", args[0], msg)
		}
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}
