package conversation

import "strings"

// MessageType is the inbound channel message type.
type MessageType string

const (
	MessageText        MessageType = "text"
	MessageAudio       MessageType = "audio"
	MessageImage       MessageType = "image"
	MessageLocation    MessageType = "location"
	MessageInteractive MessageType = "interactive"
	MessageStatus      MessageType = "status"
)

// Message is the normalised inbound event. Transport adapters fill only the
// fields that apply to Type.
type Message struct {
	SenderID  string      `json:"sender_id" validate:"required"`
	Type      MessageType `json:"type" validate:"required"`
	Text      string      `json:"text,omitempty"`
	MediaRef  string      `json:"media_ref,omitempty"`
	MimeType  string      `json:"mime_type,omitempty"`
	ReplyID   string      `json:"reply_id,omitempty"`
	Latitude  float64     `json:"latitude,omitempty"`
	Longitude float64     `json:"longitude,omitempty"`
}

// Content is the lower-cased, space-collapsed text. Interactive replies
// carry their button title here.
func (m Message) Content() string {
	return normalize(m.Text)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
