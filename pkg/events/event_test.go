package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func TestNewAndDecode(t *testing.T) {
	at := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	e, err := New(TypeOutboundReply, reply{To: "whatsapp:+919800000001", Text: "नमस्ते"}, at)
	require.NoError(t, err)
	assert.Equal(t, "outbound.reply", e.EventType())
	assert.Equal(t, at, e.Timestamp())
	assert.Equal(t, "नमस्ते", e.Payload()["text"])

	var out reply
	require.NoError(t, Decode(e, &out))
	assert.Equal(t, "whatsapp:+919800000001", out.To)
}
