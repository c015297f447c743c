package delivery

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Reply is one outbound message to a farmer.
type Reply struct {
	To        string    `json:"to"`
	Text      string    `json:"text"`
	RequestID string    `json:"request_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Deliverer sends replies over the channel.
type Deliverer interface {
	Deliver(ctx context.Context, r Reply) error
}

// Split breaks text into parts of at most limit runes, preferring paragraph
// and then line boundaries.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		head := string(runes[:limit])
		cut := strings.LastIndex(head, "\n\n")
		if cut < len(head)/3 {
			cut = strings.LastIndex(head, "\n")
		}
		if cut < len(head)/3 {
			cut = strings.LastIndex(head, " ")
		}
		if cut <= 0 {
			cut = len(head)
		}
		parts = append(parts, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
