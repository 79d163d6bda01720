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

// SaveConversation inserts or replaces a conversation. History is bounded to
// the store's maximum before it is written; an empty ID gets a UUID.
func (s *Store) SaveConversation(c *types.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveConversationTx(s.db, c)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) saveConversationTx(db execer, c *types.Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	c.History = types.BoundHistory(c.History, s.maxHistory)
	history, err := json.Marshal(c.History)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	// Conversations may exist without a project; NULL keeps the foreign key
	// satisfied for those.
	var projectID any
	if c.ProjectID != "" {
		projectID = c.ProjectID
	}

	_, err = db.Exec(
		`INSERT INTO conversations (id, project_id, kind, context, history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			context = excluded.context,
			history = excluded.history,
			updated_at = excluded.updated_at`,
		c.ID, projectID, c.Kind, c.Context, string(history), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

const conversationColumns = `id, COALESCE(project_id, ''), kind, context, history, created_at, updated_at`

// GetConversation loads a conversation by ID. History is bounded on load as
// well, so a tightened limit applies to rows written under a looser one.
func (s *Store) GetConversation(id string) (*types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	return s.scanConversation(row)
}

// ListConversations returns a project's conversations ordered by creation time.
func (s *Store) ListConversations(projectID string) ([]*types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT `+conversationColumns+` FROM conversations WHERE project_id = ? ORDER BY created_at`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*types.Conversation
	for rows.Next() {
		c, err := s.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation and its feasibility reports.
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanConversation(row rowScanner) (*types.Conversation, error) {
	var c types.Conversation
	var history string
	err := row.Scan(&c.ID, &c.ProjectID, &c.Kind, &c.Context, &history, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &c.History); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	c.History = types.BoundHistory(c.History, s.maxHistory)
	return &c, nil
}

// SaveFeasibility appends a feasibility report to a conversation.
func (s *Store) SaveFeasibility(conversationID string, r *types.FeasibilityResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	risks, err := json.Marshal(r.Risks)
	if err != nil {
		return fmt.Errorf("failed to encode risks: %w", err)
	}
	questions, err := json.Marshal(r.OpenQuestions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	estimate, err := json.Marshal(r.RoughEstimate)
	if err != nil {
		return fmt.Errorf("failed to encode estimate: %w", err)
	}
	breakdown, err := json.Marshal(r.TaskBreakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO feasibilities (conversation_id, requirement, rating, approach, risks, questions, estimate, breakdown, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conversationID, r.Requirement, string(r.Rating), r.Approach,
		string(risks), string(questions), string(estimate), string(breakdown), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feasibility: %w", err)
	}
	return nil
}

// ListFeasibilities returns a conversation's feasibility reports, oldest first.
func (s *Store) ListFeasibilities(conversationID string) ([]*types.FeasibilityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT requirement, rating, approach, risks, questions, estimate, breakdown, created_at
		 FROM feasibilities WHERE conversation_id = ? ORDER BY id`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feasibilities: %w", err)
	}
	defer rows.Close()

	var results []*types.FeasibilityResult
	for rows.Next() {
		var r types.FeasibilityResult
		var rating, risks, questions, estimate, breakdown string
		if err := rows.Scan(&r.Requirement, &rating, &r.Approach,
			&risks, &questions, &estimate, &breakdown, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feasibility: %w", err)
		}
		r.Rating = types.Rating(rating)
		if err := json.Unmarshal([]byte(risks), &r.Risks); err != nil {
			return nil, fmt.Errorf("failed to decode risks: %w", err)
		}
		if err := json.Unmarshal([]byte(questions), &r.OpenQuestions); err != nil {
			return nil, fmt.Errorf("failed to decode questions: %w", err)
		}
		if err := json.Unmarshal([]byte(estimate), &r.RoughEstimate); err != nil {
			return nil, fmt.Errorf("failed to decode estimate: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdown), &r.TaskBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}
