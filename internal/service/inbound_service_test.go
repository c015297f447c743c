package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/pkg/advisory/conversation"
	"kisan-advisory-be/pkg/events"
	pktNats "kisan-advisory-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSubscriber struct {
	eventType string
	handler   pktNats.EventHandler
}

func (s *captureSubscriber) Subscribe(_ context.Context, eventType, _ string, handler pktNats.EventHandler) error {
	s.eventType = eventType
	s.handler = handler
	return nil
}

type stubAdvisory struct {
	got   []conversation.Message
	reply []string
	err   error
}

func (a *stubAdvisory) HandleMessage(_ context.Context, msg conversation.Message) (*dto.MessageResponse, error) {
	a.got = append(a.got, msg)
	if a.err != nil {
		return nil, a.err
	}
	return &dto.MessageResponse{UserID: msg.SenderID, Replies: a.reply}, nil
}

func (a *stubAdvisory) Wait() {}

func startInbound(t *testing.T, adv *stubAdvisory) (*captureSubscriber, *recordingDeliverer) {
	t.Helper()
	sub := &captureSubscriber{}
	del := &recordingDeliverer{}
	require.NoError(t, NewInboundService(sub, adv, del, logger.NewNopLogger()).Start(context.Background()))
	require.Equal(t, events.TypeInboundMessage, sub.eventType)
	return sub, del
}

func inboundEvent(t *testing.T, req dto.InboundMessageRequest) events.Event {
	t.Helper()
	ev, err := events.New(events.TypeInboundMessage, req, time.Now())
	require.NoError(t, err)
	return ev
}

func TestInboundService_DeliversReplies(t *testing.T) {
	adv := &stubAdvisory{reply: []string{"one", "two"}}
	sub, del := startInbound(t, adv)

	err := sub.handler(context.Background(), inboundEvent(t, dto.InboundMessageRequest{
		From: "whatsapp:+919800000001", Type: "interactive", Text: "Guava", ReplyID: "crop_guava",
	}))
	require.NoError(t, err)

	require.Len(t, adv.got, 1)
	assert.Equal(t, conversation.MessageInteractive, adv.got[0].Type)
	assert.Equal(t, "crop_guava", adv.got[0].ReplyID)

	sent := del.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "whatsapp:+919800000001", sent[0].To)
	assert.Equal(t, "two", sent[1].Text)
}

func TestInboundService_InvalidEventIsAcked(t *testing.T) {
	adv := &stubAdvisory{}
	sub, del := startInbound(t, adv)

	err := sub.handler(context.Background(), inboundEvent(t, dto.InboundMessageRequest{Type: "video"}))
	require.NoError(t, err)
	assert.Empty(t, adv.got)
	assert.Empty(t, del.sent())
}

func TestInboundService_HandlerErrorIsRedelivered(t *testing.T) {
	adv := &stubAdvisory{err: errors.New("context canceled")}
	sub, _ := startInbound(t, adv)

	err := sub.handler(context.Background(), inboundEvent(t, dto.InboundMessageRequest{From: "u1", Type: "text", Text: "hi"}))
	require.Error(t, err)
}
