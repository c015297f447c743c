package store

import "time"

// State is a conversation state of a single farmer session.
type State string

const (
	StateGreeting           State = "GREETING"
	StateAwaitingMenuChoice State = "AWAITING_MENU_CHOICE"
	StateAwaitingLocation   State = "AWAITING_LOCATION"
	StateAwaitingDistrict   State = "AWAITING_DISTRICT"
	StateAwaitingCrop       State = "AWAITING_CROP"
	StateAwaitingCategory   State = "AWAITING_CATEGORY"
	StateCollectingQueries  State = "COLLECTING_QUERIES"
	StateProcessing         State = "PROCESSING"
)

// AllStates lists every state in menu order.
var AllStates = []State{
	StateGreeting,
	StateAwaitingMenuChoice,
	StateAwaitingLocation,
	StateAwaitingDistrict,
	StateAwaitingCrop,
	StateAwaitingCategory,
	StateCollectingQueries,
	StateProcessing,
}

// InputKind is the media kind of a collected farmer query.
type InputKind string

const (
	InputText  InputKind = "text"
	InputAudio InputKind = "audio"
	InputImage InputKind = "image"
)

// QueryInput is one raw farmer input collected while in COLLECTING_QUERIES.
// Media inputs carry a blob reference only; the bytes live in external storage.
type QueryInput struct {
	Kind     InputKind `json:"kind"`
	Text     string    `json:"text,omitempty"`
	MediaRef string    `json:"media_ref,omitempty"`
	MimeType string    `json:"mime_type,omitempty"`
}

// Session is the persisted per-user conversation record, keyed by channel address.
type Session struct {
	UserID           string       `json:"user_id"`
	State            State        `json:"state"`
	LockedCrop       string       `json:"locked_crop,omitempty"`
	District         string       `json:"district,omitempty"`
	Category         string       `json:"category,omitempty"`
	CollectedQueries []QueryInput `json:"collected_queries"`

	// Version increases on every state transition. In-flight pipelines
	// compare it before delivering so a superseded answer is dropped.
	Version int64 `json:"version"`

	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewSession returns a fresh session in GREETING.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:           userID,
		State:            StateGreeting,
		CollectedQueries: []QueryInput{},
		CreatedAt:        now,
		LastActivityAt:   now,
	}
}

// Expired reports whether the inactivity window has elapsed.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.LastActivityAt) >= ttl
}

// Clone returns a deep copy so callers never share the query slice.
func (s *Session) Clone() *Session {
	c := *s
	c.CollectedQueries = append([]QueryInput(nil), s.CollectedQueries...)
	return &c
}
