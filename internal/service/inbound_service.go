package service

import (
	"context"
	"time"

	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/pkg/serverutils"
	"kisan-advisory-be/pkg/delivery"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/events"
	pktNats "kisan-advisory-be/pkg/nats"
)

const (
	inboundModule  = "inbound"
	inboundDurable = "advisory-inbound-worker"
)

// EventSubscriber is the bus side of the inbound worker.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// InboundService feeds channel events from the bus into the advisory service
// and sends the synchronous replies back out.
type InboundService struct {
	subscriber EventSubscriber
	advisory   IAdvisoryService
	deliverer  delivery.Deliverer
	logger     logger.ILogger
}

func NewInboundService(sub EventSubscriber, advisory IAdvisoryService, deliverer delivery.Deliverer, log logger.ILogger) *InboundService {
	return &InboundService{
		subscriber: sub,
		advisory:   advisory,
		deliverer:  deliverer,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *InboundService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.TypeInboundMessage, inboundDurable, s.handleEvent); err != nil {
		s.logger.Error(inboundModule, "Failed to start inbound subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info(inboundModule, "Inbound worker started", map[string]interface{}{"subject": pktNats.Subject(events.TypeInboundMessage)})
	return nil
}

func (s *InboundService) handleEvent(ctx context.Context, event events.Event) error {
	var req dto.InboundMessageRequest
	if err := events.Decode(event, &req); err != nil {
		s.logger.Warn(inboundModule, "Dropping undecodable inbound event", map[string]interface{}{
			"reason": errorsx.ReasonInvalidPayload,
			"error":  err.Error(),
		})
		return nil
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		s.logger.Warn(inboundModule, "Dropping invalid inbound event", map[string]interface{}{
			"from":   req.From,
			"reason": errorsx.ReasonInvalidPayload,
			"error":  err.Error(),
		})
		return nil
	}

	res, err := s.advisory.HandleMessage(ctx, req.ToMessage())
	if err != nil {
		if errorsx.HasReason(err, errorsx.ReasonInvalidPayload) {
			return nil
		}
		return err
	}

	for _, text := range res.Replies {
		err := s.deliverer.Deliver(ctx, delivery.Reply{To: res.UserID, Text: text, SentAt: time.Now()})
		if err != nil {
			// the session already moved; redelivering the event would step it twice
			s.logger.Error(inboundModule, "Failed to deliver reply", map[string]interface{}{
				"user_id": res.UserID,
				"reason":  errorsx.Reason(err),
				"error":   err.Error(),
			})
		}
	}
	return nil
}
