package events

import (
	"encoding/json"
	"time"
)

// Event types. Published on the bus as "events.<type>".
const (
	TypeInboundMessage    = "inbound.message"
	TypeOutboundReply     = "outbound.reply"
	TypeAdvisoryCompleted = "advisory.completed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "inbound.message").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds an event from any JSON-serialisable value.
func New(eventType string, v interface{}, at time.Time) (BaseEvent, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return BaseEvent{}, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}, nil
}

// Decode reads an event payload into out.
func Decode(e Event, out interface{}) error {
	b, err := json.Marshal(e.Payload())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
