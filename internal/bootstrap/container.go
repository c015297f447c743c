package bootstrap

import (
	"context"
	"log"
	"time"

	"kisan-advisory-be/internal/config"
	"kisan-advisory-be/internal/controller"
	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/pkg/mailer"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/internal/repository/implementation"
	"kisan-advisory-be/internal/repository/memory"
	"kisan-advisory-be/internal/repository/redisstore"
	"kisan-advisory-be/internal/repository/unitofwork"
	"kisan-advisory-be/internal/service"
	"kisan-advisory-be/pkg/advisory/catalog"
	"kisan-advisory-be/pkg/advisory/conversation"
	"kisan-advisory-be/pkg/advisory/pipeline"
	"kisan-advisory-be/pkg/advisory/retrieval"
	"kisan-advisory-be/pkg/advisory/safety"
	"kisan-advisory-be/pkg/advisory/session"
	"kisan-advisory-be/pkg/advisory/variety"
	"kisan-advisory-be/pkg/delivery"
	"kisan-advisory-be/pkg/embedding"
	"kisan-advisory-be/pkg/llm/factory"
	"kisan-advisory-be/pkg/weather"

	pktNats "kisan-advisory-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	advisoryTopic = "advisory.completed"

	pipelineSlack = 30 * time.Second
	finishTimeout = 30 * time.Second
)

type Container struct {
	// Controllers
	MessageController controller.IMessageController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	InboundService  *service.InboundService
	AdvisoryService service.IAdvisoryService

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires every dependency. Failing to load the safety table, the
// catalogs or the reasoning providers is fatal.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogPath)
	c := &Container{Logger: sysLogger}

	// 2. Reference Data
	table, err := safety.LoadRules(cfg.Data.BannedPesticidesPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load banned pesticide rules: %v", err)
	}
	crops, err := catalog.LoadCrops(cfg.Data.CropsPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	districts, err := catalog.LoadDistricts(cfg.Data.DistrictsPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	varieties, err := variety.Load(cfg.Data.VarietiesPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	sysLogger.Info("bootstrap", "Reference data loaded", map[string]interface{}{
		"banned_chemicals": table.Len(),
		"crops":            len(crops.Names()),
	})

	// 3. Reasoning Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s), embeddings: %s", cfg.Ai.LLMProvider, cfg.Ai.LLMModel, embeddingProvider.Model())

	// 4. Retrieval
	retriever := retrieval.NewService(
		embeddingProvider,
		implementation.NewCorpusRepository(db),
		retrieval.Options{Threshold: cfg.Pipeline.SimilarityThreshold},
		sysLogger,
	)
	if err := retriever.Verify(ctx); err != nil {
		log.Fatalf("[FATAL] Corpus verification failed: %v", err)
	}

	policy := pipeline.DefaultPolicy()
	policy.AggregationTimeout = cfg.Pipeline.AggregationTimeout
	policy.DecompositionTimeout = cfg.Pipeline.DecompositionTimeout
	policy.GenerationTimeout = cfg.Pipeline.GenerationTimeout
	policy.AuditTimeout = cfg.Pipeline.AuditTimeout
	policy.RetrievalTimeout = cfg.Pipeline.RetrievalTimeout
	policy.K = cfg.Pipeline.RetrievalK
	policy.MaxLength = cfg.Pipeline.MaxMessageLength

	pipelineTimeout := cfg.Pipeline.Timeout
	if pipelineTimeout <= 0 {
		pipelineTimeout = policy.Budget() + pipelineSlack
	} else if pipelineTimeout < policy.Budget() {
		sysLogger.Warn("bootstrap", "Pipeline timeout is shorter than the stage budgets, late fallbacks will be cut off", map[string]interface{}{
			"pipeline_timeout": pipelineTimeout.String(),
			"stage_budget":     policy.Budget().String(),
		})
	}

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewLLMReasoner(llmProvider, sysLogger),
		retriever,
		varieties,
		table,
		policy,
		sysLogger,
		auditLogger,
	)

	// 5. Sessions
	var sessionRepo contract.SessionRepository
	var locker session.Locker
	switch cfg.Session.Backend {
	case "redis":
		rdb := newRedisClient(ctx, cfg.App.RedisURL, sysLogger)
		sessionRepo = redisstore.NewSessionRepository(rdb)
		locker = redisstore.NewLocker(rdb, 0)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	default:
		sessionRepo = memory.NewSessionRepository()
		locker = session.NewKeyedLocker()
	}
	processingTTL := cfg.Session.ProcessingTTL
	if floor := pipelineTimeout + finishTimeout; processingTTL < floor {
		sysLogger.Warn("bootstrap", "Processing TTL raised to outlive the pipeline", map[string]interface{}{
			"configured": processingTTL.String(),
			"used":       floor.String(),
		})
		processingTTL = floor
	}
	sessions := session.NewManager(sessionRepo, locker, session.Options{
		TTL:           cfg.Session.TTL,
		ProcessingTTL: processingTTL,
		LockTimeout:   cfg.Session.LockTimeout,
	}, sysLogger)
	machine := conversation.NewMachine(conversation.NewClassifier(crops, districts), nil, cfg.Pipeline.MaxQueries)

	// 6. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}

	// 7. Delivery
	var deliverer delivery.Deliverer
	switch cfg.App.DeliveryBackend {
	case "twilio":
		deliverer, err = delivery.NewTwilioDeliverer(delivery.TwilioConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.FromNumber,
		})
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize Twilio delivery: %v", err)
		}
	default:
		if natsPub == nil {
			log.Fatalf("[FATAL] NATS delivery selected but NATS is unavailable")
		}
		deliverer = delivery.NewNatsDeliverer(natsPub)
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" && cfg.SMTP.ExpertEmail != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.SMTP.ExpertEmail,
		)
	}

	// 8. Services
	publisherService := service.NewPublisherService(advisoryTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, advisoryTopic, uowFactory, sysLogger)
	c.AdvisoryService = service.NewAdvisoryService(
		ctx,
		sessions,
		machine,
		orchestrator,
		deliverer,
		weather.NewOpenMeteoClient(cfg.App.WeatherBaseURL),
		districts,
		emailService,
		publisherService,
		service.AdvisoryOptions{
			HelplineText:    cfg.App.HelplineText,
			PipelineTimeout: pipelineTimeout,
			FinishTimeout:   finishTimeout,
		},
		sysLogger,
	)
	adminService := service.NewAdminService(uowFactory, table, sysLogger)

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.InboundService = service.NewInboundService(natsSub, c.AdvisoryService, deliverer, sysLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	// 9. Controllers
	c.MessageController = controller.NewMessageController(c.AdvisoryService)
	c.AdminController = controller.NewAdminController(adminService)

	return c
}

// Close waits for in-flight advisories and releases connections.
func (c *Container) Close() {
	c.AdvisoryService.Wait()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		// sessions degrade to stateless until redis is back
		log.Warn("bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}
