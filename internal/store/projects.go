package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prodassist/internal/types"
)

// CreateProject inserts a new project. An empty ID is assigned a UUID.
func (s *Store) CreateProject(p *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO projects (id, name, repo_url, repo_path, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.GitURL, p.RepoPath, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

const projectColumns = `id, name, repo_url, repo_path, description,
	summary_overview, summary_purpose, tech_stack, created_at, updated_at`

// GetProject loads a project by ID.
func (s *Store) GetProject(id string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectByName loads a project by its unique name.
func (s *Store) GetProjectByName(name string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	return scanProject(row)
}

// ListProjects returns all projects ordered by creation time.
func (s *Store) ListProjects() ([]*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and, via cascade, its conversations,
// feasibility reports, and features.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProjectSummary stores a generated project summary.
func (s *Store) UpdateProjectSummary(id string, summary types.ProjectSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack, err := json.Marshal(summary.TechStack)
	if err != nil {
		return fmt.Errorf("failed to encode tech stack: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE projects SET summary_overview = ?, summary_purpose = ?, tech_stack = ?, updated_at = ?
		 WHERE id = ?`,
		summary.Summary, summary.Purpose, string(stack), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*types.Project, error) {
	var p types.Project
	var stack string
	err := row.Scan(&p.ID, &p.Name, &p.GitURL, &p.RepoPath, &p.Description,
		&p.Summary, &p.Purpose, &stack, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	if err := json.Unmarshal([]byte(stack), &p.TechStack); err != nil {
		return nil, fmt.Errorf("failed to decode tech stack: %w", err)
	}
	return &p, nil
}
