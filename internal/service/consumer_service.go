package service

import (
	"context"
	"encoding/json"
	"time"

	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/entity"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const consumerModule = "consumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AdvisoryCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal advisory record", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// invalid payloads are never retried
		msg.Ack()
		return
	}

	record := &entity.AdvisoryRecord{
		Id:             uuid.New(),
		RequestId:      payload.RequestID,
		UserId:         payload.UserID,
		Crop:           payload.Crop,
		District:       payload.District,
		Category:       payload.Category,
		Path:           payload.Path,
		Outcome:        payload.Outcome,
		Questions:      payload.Questions,
		Missing:        payload.Missing,
		SafetyWarnings: payload.SafetyWarnings,
		Removed:        payload.Removed,
		FinalResponse:  payload.FinalResponse,
		SessionVersion: payload.SessionVersion,
		Delivered:      payload.Delivered,
		DurationMs:     payload.DurationMs,
		CreatedAt:      payload.CompletedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AdvisoryRecordRepository().Create(ctx, record); err != nil {
		cs.logger.Error(consumerModule, "Failed to store advisory record", map[string]interface{}{
			"request_id": payload.RequestID.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Debug(consumerModule, "Advisory record stored", map[string]interface{}{
		"request_id": payload.RequestID.String(),
		"outcome":    payload.Outcome,
		"delivered":  payload.Delivered,
	})
	msg.Ack()
}
