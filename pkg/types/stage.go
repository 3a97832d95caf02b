// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the workflow pipeline:
// sessions, stage results, and stage configuration.
package types

import "github.com/google/uuid"

// Stage boundaries for the three-step workflow. A session at StageNone has
// not submitted a concept yet; StageComplete has research questions in hand.
const (
	StageNone      = 0
	StageDomains   = 1
	StageBlending  = 2
	StageQuestions = 3

	StageComplete = StageQuestions
)

// Session accumulates the state of one workflow run. It is an exclusively
// owned value: callers thread it through orchestrator calls and discard it
// on reset. Sessions are never persisted.
type Session struct {
	ID      string `json:"sessionId" yaml:"session_id"`
	Stage   int    `json:"stage" yaml:"stage"`
	Concept string `json:"concept" yaml:"concept"`
	Domain  string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Finding string `json:"finding,omitempty" yaml:"finding,omitempty"`
}

// NewSession returns a fresh session with a random identifier.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// ResultType discriminates the StageResult variants.
type ResultType string

const (
	ResultDomainSelection    ResultType = "domain_selection"
	ResultFrameworkSelection ResultType = "framework_selection"
	ResultResearchQuestions  ResultType = "research_questions"
)

// StageResult is the typed outcome of one stage. Exactly three variants
// exist, one per stage; callers match on the concrete type (or Type()) and
// never probe shapes through string keys. Every variant carries the model's
// untouched output in Content. An empty Options slice means the expected
// structure was absent from the text; that is a valid result, not an error.
type StageResult interface {
	Type() ResultType
	RawContent() string
}

// DomainOption is one candidate domain from stage 1.
type DomainOption struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// FrameworkOption is one blended framework from stage 2.
type FrameworkOption struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Question is one research question from stage 3.
type Question struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// DomainSelection holds the stage-1 result.
type DomainSelection struct {
	Content string         `json:"content" yaml:"content"`
	Options []DomainOption `json:"options" yaml:"options"`
}

func (DomainSelection) Type() ResultType { return ResultDomainSelection }

func (r DomainSelection) RawContent() string { return r.Content }

// FrameworkSelection holds the stage-2 result.
type FrameworkSelection struct {
	Content string            `json:"content" yaml:"content"`
	Options []FrameworkOption `json:"options" yaml:"options"`
}

func (FrameworkSelection) Type() ResultType { return ResultFrameworkSelection }

func (r FrameworkSelection) RawContent() string { return r.Content }

// ResearchQuestions holds the stage-3 result. TopQuestions is the model's
// highlighted subset; it is best-effort and may be empty even when Options
// is not.
type ResearchQuestions struct {
	Content      string     `json:"content" yaml:"content"`
	Options      []Question `json:"options" yaml:"options"`
	TopQuestions []string   `json:"topQuestions,omitempty" yaml:"top_questions,omitempty"`
}

func (ResearchQuestions) Type() ResultType { return ResultResearchQuestions }

func (r ResearchQuestions) RawContent() string { return r.Content }
