package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prodassist/internal/types"
)

// DiscoveryRecord pairs a discovered feature with its dedicated conversation.
// The two are committed together so a feature is never persisted without the
// conversation it seeds.
type DiscoveryRecord struct {
	Feature      *types.DiscoveredFeature
	Conversation *types.Conversation
}

// CommitDiscovery persists a full discovery run atomically. When replace is
// set, previously discovered features and their conversations are removed
// first. Any failure rolls the whole run back.
func (s *Store) CommitDiscovery(projectID string, records []DiscoveryRecord, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin discovery transaction: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.Exec(`DELETE FROM features WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("failed to clear existing features: %w", err)
		}
		if _, err := tx.Exec(
			`DELETE FROM conversations WHERE project_id = ? AND kind = ?`,
			projectID, types.ConversationDiscoveredFeature,
		); err != nil {
			return fmt.Errorf("failed to clear discovery conversations: %w", err)
		}
	}

	for _, rec := range records {
		if err := s.saveConversationTx(tx, rec.Conversation); err != nil {
			return err
		}
		rec.Feature.ConversationID = rec.Conversation.ID
		if err := insertFeature(tx, projectID, rec.Feature); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit discovery: %w", err)
	}
	return nil
}

func insertFeature(db execer, projectID string, f *types.DiscoveredFeature) error {
	deps, err := json.Marshal(f.Dependencies)
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}
	cons, err := json.Marshal(f.Considerations)
	if err != nil {
		return fmt.Errorf("failed to encode considerations: %w", err)
	}
	lims, err := json.Marshal(f.Limitations)
	if err != nil {
		return fmt.Errorf("failed to encode limitations: %w", err)
	}

	if f.DiscoveredAt.IsZero() {
		f.DiscoveredAt = time.Now().UTC()
	}

	_, err = db.Exec(
		`INSERT INTO features (id, project_id, name, overview, scope, dependencies, considerations, limitations, conversation_id, discovered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), projectID, f.Name, f.Overview, f.Scope,
		string(deps), string(cons), string(lims), f.ConversationID, f.DiscoveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature %q: %w", f.Name, err)
	}
	return nil
}

// ListFeatures returns a project's discovered features, oldest first.
func (s *Store) ListFeatures(projectID string) ([]*types.DiscoveredFeature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT name, overview, scope, dependencies, considerations, limitations, conversation_id, discovered_at
		 FROM features WHERE project_id = ? ORDER BY discovered_at, name`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []*types.DiscoveredFeature
	for rows.Next() {
		var f types.DiscoveredFeature
		var deps, cons, lims string
		if err := rows.Scan(&f.Name, &f.Overview, &f.Scope, &deps, &cons, &lims,
			&f.ConversationID, &f.DiscoveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		if err := json.Unmarshal([]byte(deps), &f.Dependencies); err != nil {
			return nil, fmt.Errorf("failed to decode dependencies: %w", err)
		}
		if err := json.Unmarshal([]byte(cons), &f.Considerations); err != nil {
			return nil, fmt.Errorf("failed to decode considerations: %w", err)
		}
		if err := json.Unmarshal([]byte(lims), &f.Limitations); err != nil {
			return nil, fmt.Errorf("failed to decode limitations: %w", err)
		}
		features = append(features, &f)
	}
	return features, rows.Err()
}

// CountFeatures returns how many features a project has.
func (s *Store) CountFeatures(projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM features WHERE project_id = ?`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count features: %w", err)
	}
	return n, nil
}
