package delivery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"short"}, Split("  short ", 100))

	para := strings.Repeat("गेहूं में पीला रतुआ ", 10)
	text := para + "\n\n" + para + "\n\n" + para
	parts := Split(text, 450)
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 450)
	}
	assert.Equal(t, strings.TrimSpace(para+"\n\n"+para), parts[0])
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func TestNatsDeliverer(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewNatsDeliverer(pub)
	d.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, d.Deliver(context.Background(), Reply{To: "whatsapp:+919800000001", Text: "नमस्ते"}))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeOutboundReply, pub.events[0].EventType())

	var got Reply
	require.NoError(t, events.Decode(pub.events[0], &got))
	assert.Equal(t, "नमस्ते", got.Text)
	assert.Equal(t, 2026, got.SentAt.Year())

	pub.err = errors.New("nats: no responders")
	err := d.Deliver(context.Background(), Reply{To: "x", Text: "y"})
	assert.True(t, errorsx.HasReason(err, errorsx.ReasonDeliverySend))
}

type stubCreator struct {
	sent []*api.CreateMessageParams
	err  error
}

func (s *stubCreator) CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error) {
	s.sent = append(s.sent, params)
	if s.err != nil {
		return nil, s.err
	}
	sid := "SM1"
	return &api.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioDeliverer(t *testing.T) {
	_, err := NewTwilioDeliverer(TwilioConfig{AccountSID: "AC1"})
	require.Error(t, err)

	stub := &stubCreator{}
	d := &TwilioDeliverer{cfg: TwilioConfig{FromNumber: "+14155238886"}, client: stub}

	long := strings.Repeat("सिंचाई शाम को करें। ", 120)
	require.NoError(t, d.Deliver(context.Background(), Reply{To: "+919800000001", Text: long}))
	require.Greater(t, len(stub.sent), 1)
	first := stub.sent[0]
	assert.Equal(t, "whatsapp:+919800000001", *first.To)
	assert.Equal(t, "whatsapp:+14155238886", *first.From)
	for _, p := range stub.sent {
		assert.LessOrEqual(t, utf8.RuneCountInString(*p.Body), whatsappBodyLimit)
	}

	stub.err = errors.New("20003 authenticate")
	err = d.Deliver(context.Background(), Reply{To: "whatsapp:+919800000001", Text: "hi"})
	assert.True(t, errorsx.HasReason(err, errorsx.ReasonDeliverySend))
}
