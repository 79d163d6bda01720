// Package types provides shared type definitions used across prodassist packages.
// This package exists to break import cycles between the orchestrator, store,
// and discovery packages. Types here are foundational data structures with no
// complex dependencies.
package types

import (
	"fmt"
	"time"
)

// RequestKind identifies which stage a turn is routed to.
type RequestKind string

const (
	KindChat        RequestKind = "chat"
	KindFeature     RequestKind = "feature_analysis"
	KindFeasibility RequestKind = "feasibility_analysis"
)

// Valid reports whether k is one of the three known kinds.
func (k RequestKind) Valid() bool {
	switch k {
	case KindChat, KindFeature, KindFeasibility:
		return true
	}
	return false
}

// IsAnalysis reports whether the kind requires analysis preparation.
func (k RequestKind) IsAnalysis() bool {
	return k == KindFeature || k == KindFeasibility
}

// Message roles in a conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// FeatureQuery carries the fields specific to a feature-analysis turn.
type FeatureQuery struct {
	Query string
}

// FeasibilityRequest carries the fields specific to a feasibility turn.
type FeasibilityRequest struct {
	Requirement string
	Context     string
}

// Envelope is the per-turn state threaded through the orchestration core.
// Shared fields (identities, repo path, cached analysis, trace log) live
// directly on the envelope; kind-specific fields live on the variant structs
// so stages never read another kind's data. Exactly one variant is non-nil
// once routing completes, matching Kind.
type Envelope struct {
	ProjectID      string
	ConversationID string
	RepoPath       string

	// Message is the free-text user message, if the turn carried one.
	Message string

	// History and AnalysisContext describe the conversation the turn belongs
	// to (loaded before routing, since the router's conservative mode depends
	// on AnalysisContext being present).
	History         []Message
	AnalysisContext string

	// Structure is the repo file/directory listing, computed lazily.
	Structure *RepoStructure

	// Analysis is the cached code-analysis text for this turn.
	Analysis string

	Kind        RequestKind
	Feature     *FeatureQuery
	Feasibility *FeasibilityRequest

	// Trace accumulates human-readable diagnostics for the turn. It is
	// observability only; nothing reads it for control flow.
	Trace []string
}

// Tracef appends a formatted entry to the envelope's trace log.
func (e *Envelope) Tracef(format string, args ...interface{}) {
	e.Trace = append(e.Trace, fmt.Sprintf(format, args...))
}

// RepoStructure is the file/directory listing of a working tree.
type RepoStructure struct {
	Path        string
	Files       []string
	Directories []string
}

// Conversation is a durable chat session anchored to a project. Context holds
// the analysis snapshot shown to follow-up chat turns.
type Conversation struct {
	ID        string
	ProjectID string
	Kind      string // "feature", "feasibility", or "discovered_feature"
	Context   string
	History   []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conversation kind tags.
const (
	ConversationFeature           = "feature"
	ConversationFeasibility       = "feasibility"
	ConversationDiscoveredFeature = "discovered_feature"
)

// Rating is the closed set of feasibility assessments.
type Rating string

const (
	RatingHigh    Rating = "High"
	RatingMedium  Rating = "Medium"
	RatingLow     Rating = "Low"
	RatingUnknown Rating = "Unknown"
)

// Estimate is the rough-estimate bag extracted from a feasibility response.
// RawText always holds the verbatim section; Parsed marks whether the section
// was present at all.
type Estimate struct {
	RawText string `json:"raw_text"`
	Parsed  bool   `json:"parsed"`
	Error   string `json:"error,omitempty"`
}

// TaskBreakdown is the task-breakdown bag. The booleans flag which task types
// were mentioned anywhere in the section.
type TaskBreakdown struct {
	RawText        string `json:"raw_text"`
	Parsed         bool   `json:"parsed"`
	Design         bool   `json:"design,omitempty"`
	Spike          bool   `json:"spike,omitempty"`
	POC            bool   `json:"poc,omitempty"`
	Implementation bool   `json:"implementation,omitempty"`
	QA             bool   `json:"qa,omitempty"`
	Error          string `json:"error,omitempty"`
}

// FeasibilityResult is the structured outcome of a feasibility turn.
type FeasibilityResult struct {
	Requirement   string
	Context       string
	Approach      string
	Risks         []string
	OpenQuestions []string
	Rating        Rating
	RoughEstimate Estimate
	TaskBreakdown TaskBreakdown
	CreatedAt     time.Time
}

// FeatureAnalysis is the structured outcome of a feature turn. Overview is
// the short business summary; Details retains the full model response.
type FeatureAnalysis struct {
	Overview string
	Details  string
}

// DiscoveredFeature is one capability found by the discovery pipeline.
type DiscoveredFeature struct {
	Name           string
	Overview       string
	Scope          string
	Dependencies   []string
	Considerations []string
	Limitations    []string
	DiscoveredAt   time.Time
	ConversationID string
}

// ProjectSummary is the one-shot business summary of a repository.
type ProjectSummary struct {
	Summary   string
	Purpose   string
	TechStack []string
}

// Project is a registered repository.
type Project struct {
	ID          string
	Name        string
	GitURL      string
	RepoPath    string
	Description string
	Summary     string
	Purpose     string
	TechStack   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TurnResult is what a completed orchestration turn returns to the caller.
// Exactly one of Response/Feature/Feasibility is populated, per Kind.
type TurnResult struct {
	Kind           RequestKind
	ConversationID string
	Response       string
	Feature        *FeatureAnalysis
	Feasibility    *FeasibilityResult
	Trace          []string
}
