package pipeline

import (
	"time"

	"kisan-advisory-be/pkg/store"

	"github.com/google/uuid"
)

// Kind selects the pipeline entry point.
type Kind string

const (
	KindAdvice  Kind = "advice"
	KindVariety Kind = "variety"
)

// Request is everything captured from the session when PROCESSING began.
type Request struct {
	ID       uuid.UUID
	UserID   string
	Kind     Kind
	Crop     string
	District string
	State    string
	Category string
	Queries  []store.QueryInput
	// Version and SessionCreatedAt identify the session generation; a
	// result is delivered only if both still match.
	Version          int64
	SessionCreatedAt time.Time
}

// Classification is the aggregation stage verdict.
type Classification string

const (
	ClassOnTopic         Classification = "on_topic"
	ClassDifferentCrop   Classification = "different_crop"
	ClassGeneralQuestion Classification = "general_question"
	ClassContactRequest  Classification = "contact_request"
)

func (c Classification) valid() bool {
	switch c {
	case ClassOnTopic, ClassDifferentCrop, ClassGeneralQuestion, ClassContactRequest:
		return true
	}
	return false
}

// Path is the route a request took through the orchestrator.
type Path string

const (
	PathRAG       Path = "rag"
	PathKnowledge Path = "knowledge"
	PathVariety   Path = "variety_local"
	PathVarietyAI Path = "variety_generated"
	PathRedirect  Path = "redirect"
	PathContact   Path = "contact"
	PathAborted   Path = "aborted"
)

// Outcome tells the caller how to finish the session.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeRedirect Outcome = "redirect"
	OutcomeContact  Outcome = "contact"
	OutcomeRetry    Outcome = "retry"
)

// PipelineContext is request scoped and never persisted.
type PipelineContext struct {
	Crop             string
	District         string
	Classification   Classification
	DetectedCrop     string
	AggregatedIssues []string
	Questions        []string
	// RAGEvidence maps an atomic question to its ranked, annotated evidence.
	RAGEvidence map[string][]store.RAGResult
	// SafetyWarnings maps an evidence source id to the banned chemicals it mentions.
	SafetyWarnings map[string][]string
	Missing        []string
	DraftResponse  string
	FinalResponse  string
	Removed        []string
	Suppressed     bool
	Version        int64
}

func newPipelineContext(req Request) *PipelineContext {
	return &PipelineContext{
		Crop:           req.Crop,
		District:       req.District,
		RAGEvidence:    make(map[string][]store.RAGResult),
		SafetyWarnings: make(map[string][]string),
		Version:        req.Version,
	}
}

// Result is what the orchestrator hands back for delivery.
type Result struct {
	Outcome  Outcome
	Path     Path
	Text     string
	Context  *PipelineContext
	Duration time.Duration
}
