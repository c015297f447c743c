package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kisan-advisory-be/internal/constant"
	"kisan-advisory-be/internal/dto"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/pkg/mailer"
	"kisan-advisory-be/pkg/advisory/conversation"
	"kisan-advisory-be/pkg/advisory/pipeline"
	"kisan-advisory-be/pkg/advisory/session"
	"kisan-advisory-be/pkg/delivery"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/store"
	"kisan-advisory-be/pkg/weather"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const advisoryModule = "advisory"

// PipelineRunner runs one advisory request.
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// DistrictLocator resolves a district to its state and forecast point.
type DistrictLocator interface {
	Coordinates(name string) (lat, lon float64, ok bool)
	State(name string) string
}

type IAdvisoryService interface {
	HandleMessage(ctx context.Context, msg conversation.Message) (*dto.MessageResponse, error)
	// Wait blocks until every in-flight advisory has finished.
	Wait()
}

type AdvisoryOptions struct {
	HelplineText    string
	PipelineTimeout time.Duration
	WeatherTimeout  time.Duration
	// FinishTimeout bounds closing the session and delivering the result. It
	// starts after the pipeline returns, so an expired run still replies.
	FinishTimeout time.Duration
}

type advisoryService struct {
	sessions  *session.Manager
	machine   *conversation.Machine
	runner    PipelineRunner
	deliverer delivery.Deliverer
	weather   weather.Provider
	districts DistrictLocator
	mailer    mailer.IEmailService
	publisher IPublisherService
	opts      AdvisoryOptions
	logger    logger.ILogger

	// background runs outlive the inbound request
	baseCtx context.Context
	wg      sync.WaitGroup
}

func NewAdvisoryService(
	baseCtx context.Context,
	sessions *session.Manager,
	machine *conversation.Machine,
	runner PipelineRunner,
	deliverer delivery.Deliverer,
	weatherProvider weather.Provider,
	districts DistrictLocator,
	emailService mailer.IEmailService,
	publisher IPublisherService,
	opts AdvisoryOptions,
	log logger.ILogger,
) IAdvisoryService {
	if opts.PipelineTimeout <= 0 {
		opts.PipelineTimeout = pipeline.DefaultPolicy().Budget()
	}
	if opts.WeatherTimeout <= 0 {
		opts.WeatherTimeout = 10 * time.Second
	}
	if opts.FinishTimeout <= 0 {
		opts.FinishTimeout = 30 * time.Second
	}
	return &advisoryService{
		sessions:  sessions,
		machine:   machine,
		runner:    runner,
		deliverer: deliverer,
		weather:   weatherProvider,
		districts: districts,
		mailer:    emailService,
		publisher: publisher,
		opts:      opts,
		logger:    log,
		baseCtx:   baseCtx,
	}
}

func (s *advisoryService) HandleMessage(ctx context.Context, msg conversation.Message) (*dto.MessageResponse, error) {
	if strings.TrimSpace(msg.SenderID) == "" {
		return nil, errorsx.Wrap(errors.New("message has no sender"), errorsx.ReasonInvalidPayload)
	}

	var step conversation.Result
	sess, err := s.sessions.Transact(ctx, msg.SenderID, func(sess *store.Session) (bool, error) {
		step = s.machine.Step(sess, msg)
		return step.Changed, nil
	})
	if errors.Is(err, session.ErrBusy) {
		return &dto.MessageResponse{UserID: msg.SenderID, Replies: []string{constant.ReplyBusy}}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug(advisoryModule, "Session step", map[string]interface{}{
		"user_id": msg.SenderID,
		"event":   step.Event.Kind,
		"from":    step.From,
		"to":      step.To,
		"action":  step.Action,
		"version": sess.Version,
	})

	res := &dto.MessageResponse{UserID: sess.UserID, State: string(sess.State)}

	switch step.Action {
	case conversation.ActionIgnore:
	case conversation.ActionPrompt:
		res.Replies = []string{promptFor(sess.State)}
	case conversation.ActionRetry:
		res.Replies = []string{constant.ReplyNotUnderstood + "\n\n" + promptFor(sess.State)}
	case conversation.ActionAcknowledge:
		res.Replies = []string{constant.ReplyQueryAdded}
	case conversation.ActionQueryLimit:
		res.Replies = []string{fmt.Sprintf(constant.ReplyQueryLimit, len(sess.CollectedQueries))}
	case conversation.ActionStillProcessing:
		res.Replies = []string{constant.ReplyStillProcessing}
	case conversation.ActionWeather:
		res.Replies = []string{s.forecast(ctx, step.Event, sess)}
	case conversation.ActionRunAdvice, conversation.ActionRunVariety:
		req := s.newRequest(sess, step.Action)
		s.start(req)
		res.Replies = []string{constant.ReplyWorking}
		res.Processing = true
		res.RequestID = &req.ID
	default:
		res.Replies = []string{constant.ReplyMenu}
	}
	return res, nil
}

func (s *advisoryService) Wait() {
	s.wg.Wait()
}

func promptFor(state store.State) string {
	switch state {
	case store.StateAwaitingLocation:
		return constant.ReplyAskLocation
	case store.StateAwaitingDistrict:
		return constant.ReplyAskDistrict
	case store.StateAwaitingCrop:
		return constant.ReplyAskCrop
	case store.StateAwaitingCategory:
		return constant.ReplyAskCategory
	case store.StateCollectingQueries:
		return constant.ReplyAskQueries
	case store.StateProcessing:
		return constant.ReplyStillProcessing
	default:
		return constant.ReplyMenu
	}
}

func (s *advisoryService) forecast(ctx context.Context, ev conversation.Event, sess *store.Session) string {
	lat, lon, place := ev.Latitude, ev.Longitude, "आपके क्षेत्र"
	if ev.Kind != conversation.EventLocation {
		var ok bool
		place = sess.District
		if lat, lon, ok = s.districts.Coordinates(sess.District); !ok {
			s.logger.Warn(advisoryModule, "District has no coordinates", map[string]interface{}{"district": sess.District})
			return constant.ReplyWeatherUnavailable
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.WeatherTimeout)
	defer cancel()
	f, err := s.weather.Forecast(ctx, place, lat, lon)
	if err != nil {
		s.logger.Warn(advisoryModule, "Weather lookup failed", map[string]interface{}{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
		return constant.ReplyWeatherUnavailable
	}
	return f.Render() + constant.ReplyFollowUp
}

func (s *advisoryService) newRequest(sess *store.Session, action conversation.Action) pipeline.Request {
	kind := pipeline.KindAdvice
	if action == conversation.ActionRunVariety {
		kind = pipeline.KindVariety
	}
	return pipeline.Request{
		ID:               uuid.New(),
		UserID:           sess.UserID,
		Kind:             kind,
		Crop:             sess.LockedCrop,
		District:         sess.District,
		State:            s.districts.State(sess.District),
		Category:         sess.Category,
		Queries:          append([]store.QueryInput(nil), sess.CollectedQueries...),
		Version:          sess.Version,
		SessionCreatedAt: sess.CreatedAt,
	}
}

func (s *advisoryService) start(req pipeline.Request) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.PipelineTimeout)
		defer cancel()

		res, err := s.runner.Run(ctx, req)
		if err != nil {
			s.logger.Error(advisoryModule, "Advisory pipeline failed", map[string]interface{}{
				"request_id": req.ID.String(),
				"user_id":    req.UserID,
				"crop":       req.Crop,
				"version":    req.Version,
				"reason":     errorsx.Reason(err),
				"error":      err.Error(),
			})
		}
		if res == nil {
			res = &pipeline.Result{Outcome: pipeline.OutcomeRetry, Path: pipeline.PathAborted, Text: constant.ReplyTryAgain}
		}

		finishCtx, finishCancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FinishTimeout)
		defer finishCancel()
		s.finish(finishCtx, req, res)
	}()
}

// finish closes the processing cycle and delivers the result, unless the
// session moved on while the pipeline ran.
func (s *advisoryService) finish(ctx context.Context, req pipeline.Request, res *pipeline.Result) {
	current := false
	err := retry.Do(
		func() error {
			_, err := s.sessions.Transact(ctx, req.UserID, func(sess *store.Session) (bool, error) {
				if sess.Version != req.Version || !sess.CreatedAt.Equal(req.SessionCreatedAt) {
					return false, nil
				}
				current = conversation.Complete(sess, res.Outcome == pipeline.OutcomeRetry)
				return current, nil
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, session.ErrBusy) }),
	)
	if err != nil {
		s.logger.Error(advisoryModule, "Failed to complete session", map[string]interface{}{
			"request_id": req.ID.String(),
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
	}

	delivered := false
	if current {
		text := s.render(req, res)
		err := s.deliverer.Deliver(ctx, delivery.Reply{To: req.UserID, Text: text, RequestID: req.ID.String()})
		if err != nil {
			s.logger.Error(advisoryModule, "Failed to deliver advisory", map[string]interface{}{
				"request_id": req.ID.String(),
				"user_id":    req.UserID,
				"reason":     errorsx.Reason(err),
				"error":      err.Error(),
			})
		}
		delivered = err == nil
	} else {
		s.logger.Info(advisoryModule, "Discarding stale advisory", map[string]interface{}{
			"request_id": req.ID.String(),
			"user_id":    req.UserID,
			"version":    req.Version,
		})
	}

	s.record(ctx, req, res, delivered)
}

func (s *advisoryService) render(req pipeline.Request, res *pipeline.Result) string {
	switch res.Outcome {
	case pipeline.OutcomeAnswered, pipeline.OutcomeRedirect:
		return res.Text + constant.ReplyFollowUp
	case pipeline.OutcomeContact:
		s.notifyExpert(req)
		return fmt.Sprintf(constant.ReplyContact, s.opts.HelplineText)
	default:
		return constant.ReplyTryAgain
	}
}

func (s *advisoryService) notifyExpert(req pipeline.Request) {
	if s.mailer == nil {
		return
	}
	var msgs []string
	for _, q := range req.Queries {
		switch {
		case q.Text != "":
			msgs = append(msgs, q.Text)
		case q.MediaRef != "":
			msgs = append(msgs, fmt.Sprintf("[%s] %s", q.Kind, q.MediaRef))
		}
	}
	err := s.mailer.SendExpertContact(mailer.ExpertContact{
		UserID:   req.UserID,
		Crop:     req.Crop,
		District: req.District,
		Category: req.Category,
		Messages: msgs,
	})
	if err != nil {
		s.logger.Warn(advisoryModule, "Failed to notify expert", map[string]interface{}{
			"request_id": req.ID.String(),
			"error":      err.Error(),
		})
	}
}

func (s *advisoryService) record(ctx context.Context, req pipeline.Request, res *pipeline.Result, delivered bool) {
	if s.publisher == nil {
		return
	}
	msg := dto.AdvisoryCompletedMessage{
		RequestID:      req.ID,
		UserID:         req.UserID,
		Crop:           req.Crop,
		District:       req.District,
		Category:       req.Category,
		Path:           string(res.Path),
		Outcome:        string(res.Outcome),
		SessionVersion: req.Version,
		Delivered:      delivered,
		DurationMs:     res.Duration.Milliseconds(),
		CompletedAt:    time.Now(),
	}
	if pc := res.Context; pc != nil {
		msg.Questions = pc.Questions
		msg.Missing = pc.Missing
		msg.SafetyWarnings = pc.SafetyWarnings
		msg.Removed = pc.Removed
		msg.FinalResponse = pc.FinalResponse
	}
	payload, err := json.Marshal(msg)
	if err == nil {
		err = s.publisher.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn(advisoryModule, "Failed to publish advisory record", map[string]interface{}{
			"request_id": req.ID.String(),
			"error":      err.Error(),
		})
	}
}
