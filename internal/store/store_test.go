package store

import (
	"errors"
	"fmt"
	"testing"

	"prodassist/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", 20)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestProject(t *testing.T, s *Store) *types.Project {
	t.Helper()
	p := &types.Project{Name: "demo", GitURL: "https://example.com/demo.git", RepoPath: "/tmp/demo"}
	if err := s.CreateProject(p); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return p
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestStore(t)

	p := newTestProject(t, s)
	if p.ID == "" {
		t.Fatal("expected generated project ID")
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Name != "demo" || got.GitURL != "https://example.com/demo.git" {
		t.Errorf("unexpected project: %+v", got)
	}

	byName, err := s.GetProjectByName("demo")
	if err != nil {
		t.Fatalf("GetProjectByName: %v", err)
	}
	if byName.ID != p.ID {
		t.Errorf("lookup by name returned %s, want %s", byName.ID, p.ID)
	}

	all, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 project, got %d", len(all))
	}

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := s.GetProject(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDuplicateProjectNameRejected(t *testing.T) {
	s := newTestStore(t)
	newTestProject(t, s)

	err := s.CreateProject(&types.Project{Name: "demo"})
	if err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetProject("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProjectSummary(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	summary := types.ProjectSummary{
		Summary:   "A demo service",
		Purpose:   "Demonstrates things",
		TechStack: []string{"Go", "SQLite"},
	}
	if err := s.UpdateProjectSummary(p.ID, summary); err != nil {
		t.Fatalf("UpdateProjectSummary: %v", err)
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Summary != "A demo service" || got.Purpose != "Demonstrates things" {
		t.Errorf("summary not persisted: %+v", got)
	}
	if len(got.TechStack) != 2 || got.TechStack[0] != "Go" {
		t.Errorf("tech stack not persisted: %v", got.TechStack)
	}

	if err := s.UpdateProjectSummary("missing", summary); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing project, got %v", err)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	c := &types.Conversation{
		ProjectID: p.ID,
		Kind:      types.ConversationFeature,
		Context:   "analysis context",
		History: []types.Message{
			{Role: types.RoleUser, Content: "question"},
			{Role: types.RoleAssistant, Content: "answer"},
		},
	}
	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected generated conversation ID")
	}

	got, err := s.GetConversation(c.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.Context != "analysis context" || got.Kind != types.ConversationFeature {
		t.Errorf("unexpected conversation: %+v", got)
	}
	if len(got.History) != 2 || got.History[1].Content != "answer" {
		t.Errorf("history not persisted: %+v", got.History)
	}
}

func TestSaveConversationUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	c := &types.Conversation{ProjectID: p.ID, Kind: types.ConversationFeature, Context: "first"}
	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}

	c.Kind = types.ConversationFeasibility
	c.Context = "second"
	c.History = append(c.History, types.Message{Role: types.RoleUser, Content: "more"})
	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation update: %v", err)
	}

	got, err := s.GetConversation(c.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.Kind != types.ConversationFeasibility || got.Context != "second" {
		t.Errorf("update not applied: %+v", got)
	}
	if len(got.History) != 1 {
		t.Errorf("expected 1 message, got %d", len(got.History))
	}

	all, err := s.ListConversations(p.ID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("update created a new row: %d conversations", len(all))
	}
}

func TestHistoryBoundedOnSaveAndLoad(t *testing.T) {
	s, err := New(":memory:", 5)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()
	p := newTestProject(t, s)

	c := &types.Conversation{ProjectID: p.ID, Kind: types.ConversationFeature}
	for i := 0; i < 12; i++ {
		c.History = append(c.History, types.Message{
			Role:    types.RoleUser,
			Content: fmt.Sprintf("msg-%d", i),
		})
	}
	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}

	got, err := s.GetConversation(c.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(got.History) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got.History))
	}
	if got.History[0].Content != "msg-7" || got.History[4].Content != "msg-11" {
		t.Errorf("wrong window kept: first=%s last=%s", got.History[0].Content, got.History[4].Content)
	}
}

func TestFeasibilityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	c := &types.Conversation{ProjectID: p.ID, Kind: types.ConversationFeasibility}
	if err := s.SaveConversation(c); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}

	r := &types.FeasibilityResult{
		Requirement:   "add exports",
		Rating:        types.RatingMedium,
		Approach:      "extend the report layer",
		Risks:         []string{"schema drift"},
		OpenQuestions: []string{"which formats?"},
		RoughEstimate: types.Estimate{RawText: "2 weeks", Parsed: true},
		TaskBreakdown: types.TaskBreakdown{RawText: "design, implementation", Parsed: true, Design: true, Implementation: true},
	}
	if err := s.SaveFeasibility(c.ID, r); err != nil {
		t.Fatalf("SaveFeasibility: %v", err)
	}

	results, err := s.ListFeasibilities(c.ID)
	if err != nil {
		t.Fatalf("ListFeasibilities: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 feasibility, got %d", len(results))
	}
	got := results[0]
	if got.Rating != types.RatingMedium || got.Approach != "extend the report layer" {
		t.Errorf("unexpected feasibility: %+v", got)
	}
	if !got.TaskBreakdown.Design || !got.TaskBreakdown.Implementation {
		t.Errorf("breakdown flags lost: %+v", got.TaskBreakdown)
	}
}

func TestCommitDiscoveryAtomic(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	records := []DiscoveryRecord{
		discoveryRecord(p.ID, "User Authentication"),
		discoveryRecord(p.ID, "Report Export"),
	}
	if err := s.CommitDiscovery(p.ID, records, false); err != nil {
		t.Fatalf("CommitDiscovery: %v", err)
	}

	features, err := s.ListFeatures(p.ID)
	if err != nil {
		t.Fatalf("ListFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	for _, f := range features {
		if f.ConversationID == "" {
			t.Errorf("feature %q has no conversation", f.Name)
		}
		if _, err := s.GetConversation(f.ConversationID); err != nil {
			t.Errorf("feature conversation missing: %v", err)
		}
	}
}

func TestCommitDiscoveryReplace(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	first := []DiscoveryRecord{discoveryRecord(p.ID, "Old Feature")}
	if err := s.CommitDiscovery(p.ID, first, false); err != nil {
		t.Fatalf("CommitDiscovery: %v", err)
	}
	oldConvID := first[0].Conversation.ID

	second := []DiscoveryRecord{discoveryRecord(p.ID, "New Feature")}
	if err := s.CommitDiscovery(p.ID, second, true); err != nil {
		t.Fatalf("CommitDiscovery replace: %v", err)
	}

	features, err := s.ListFeatures(p.ID)
	if err != nil {
		t.Fatalf("ListFeatures: %v", err)
	}
	if len(features) != 1 || features[0].Name != "New Feature" {
		t.Fatalf("replace did not swap features: %+v", features)
	}
	if _, err := s.GetConversation(oldConvID); !errors.Is(err, ErrNotFound) {
		t.Errorf("old discovery conversation survived replace: %v", err)
	}

	n, err := s.CountFeatures(p.ID)
	if err != nil {
		t.Fatalf("CountFeatures: %v", err)
	}
	if n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	s := newTestStore(t)
	p := newTestProject(t, s)

	records := []DiscoveryRecord{discoveryRecord(p.ID, "Cascaded Feature")}
	if err := s.CommitDiscovery(p.ID, records, false); err != nil {
		t.Fatalf("CommitDiscovery: %v", err)
	}

	if err := s.DeleteProject(p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	features, err := s.ListFeatures(p.ID)
	if err != nil {
		t.Fatalf("ListFeatures: %v", err)
	}
	if len(features) != 0 {
		t.Errorf("features survived project delete: %d", len(features))
	}
	conversations, err := s.ListConversations(p.ID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("conversations survived project delete: %d", len(conversations))
	}
}

func discoveryRecord(projectID, name string) DiscoveryRecord {
	return DiscoveryRecord{
		Feature: &types.DiscoveredFeature{
			Name:     name,
			Overview: "overview of " + name,
			Scope:    "scope of " + name,
		},
		Conversation: &types.Conversation{
			ProjectID: projectID,
			Kind:      types.ConversationDiscoveredFeature,
			Context:   "details for " + name,
		},
	}
}
