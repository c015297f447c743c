package dto

import (
	"time"

	"kisan-advisory-be/pkg/advisory/conversation"

	"github.com/google/uuid"
)

type InboundMessageRequest struct {
	From      string  `json:"from" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=text audio image location interactive status"`
	Text      string  `json:"text"`
	MediaURL  string  `json:"media_url" validate:"omitempty,url"`
	MimeType  string  `json:"mime_type"`
	ReplyID   string  `json:"reply_id"`
	Latitude  float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude float64 `json:"longitude" validate:"omitempty,longitude"`
}

type MessageResponse struct {
	UserID  string   `json:"user_id"`
	State   string   `json:"state"`
	Replies []string `json:"replies"`
	// Processing is true when an advisory was started and will arrive
	// asynchronously through the delivery channel.
	Processing bool       `json:"processing"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
}

// ToMessage maps a transport payload onto the normalised inbound event.
func (r InboundMessageRequest) ToMessage() conversation.Message {
	return conversation.Message{
		SenderID:  r.From,
		Type:      conversation.MessageType(r.Type),
		Text:      r.Text,
		MediaRef:  r.MediaURL,
		MimeType:  r.MimeType,
		ReplyID:   r.ReplyID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// AdvisoryCompletedMessage is published on the internal bus when a pipeline
// run ends, delivered or not.
type AdvisoryCompletedMessage struct {
	RequestID      uuid.UUID           `json:"request_id"`
	UserID         string              `json:"user_id"`
	Crop           string              `json:"crop"`
	District       string              `json:"district"`
	Category       string              `json:"category"`
	Path           string              `json:"path"`
	Outcome        string              `json:"outcome"`
	Questions      []string            `json:"questions"`
	Missing        []string            `json:"missing"`
	SafetyWarnings map[string][]string `json:"safety_warnings"`
	Removed        []string            `json:"removed"`
	FinalResponse  string              `json:"final_response"`
	SessionVersion int64               `json:"session_version"`
	Delivered      bool                `json:"delivered"`
	DurationMs     int64               `json:"duration_ms"`
	CompletedAt    time.Time           `json:"completed_at"`
}
