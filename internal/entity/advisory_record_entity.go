package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdvisoryRecord is the audit trail of one delivered (or discarded) advisory.
type AdvisoryRecord struct {
	Id             uuid.UUID
	RequestId      uuid.UUID
	UserId         string
	Crop           string
	District       string
	Category       string
	Path           string
	Outcome        string
	Questions      []string
	Missing        []string
	SafetyWarnings map[string][]string
	Removed        []string
	FinalResponse  string
	SessionVersion int64
	Delivered      bool
	DurationMs     int64
	CreatedAt      time.Time
}
