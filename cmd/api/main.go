package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"consumo_wpp_backend/internal/catalog"
	"consumo_wpp_backend/internal/config"
	"consumo_wpp_backend/internal/consumption"
	"consumo_wpp_backend/internal/conversation"
	domainevents "consumo_wpp_backend/internal/events"
	apphttp "consumo_wpp_backend/internal/http"
	"consumo_wpp_backend/internal/http/router"
	"consumo_wpp_backend/internal/preprocess"
	"consumo_wpp_backend/internal/resolve"
	"consumo_wpp_backend/internal/scheduler"
	"consumo_wpp_backend/internal/webhook"
	"consumo_wpp_backend/internal/whatsapp"
	"consumo_wpp_backend/platform/ai/groq"
	"consumo_wpp_backend/platform/events"
	"consumo_wpp_backend/platform/logger"
	"consumo_wpp_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid redis url", "error", err)
		panic("invalid redis url: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	eventBus := events.NewInMemoryBus(log.Logger)

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		log.Error("failed to initialize genai client", "error", err)
		panic("failed to initialize genai client: " + err.Error())
	}

	groqModel := groq.NewModel(groq.Config{
		APIKey: cfg.GroqAPIKey,
		Model:  cfg.GroqModel,
	})

	catalogClient, err := catalog.NewClient(farmBaseURLs(cfg), cfg.FarmUser, cfg.FarmPassword, log)
	if err != nil {
		log.Error("failed to initialize catalog client", "error", err)
		panic("failed to initialize catalog client: " + err.Error())
	}
	gateway := catalog.NewHTTPGateway(catalogClient, log)

	whatsappClient := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppClientToken, cfg.WhatsAppSendPerSec, log)

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	extractor := consumption.NewExtractor(genaiClient, cfg.GeminiModel, log)
	builder, err := consumption.NewBuilder(
		groqModel,
		gateway,
		cfg.GrowerID,
		resolve.NewProductService(gateway, log),
		resolve.NewHarvestService(),
		resolve.NewStockPointService(),
		resolve.NewMachineService(),
		resolve.NewLandUnitService(),
		log,
	)
	if err != nil {
		log.Error("failed to initialize resolution builder", "error", err)
		panic("failed to initialize resolution builder: " + err.Error())
	}
	persister := consumption.NewPersister(gateway, log)

	store := conversation.NewRedisStore(redisClient, cfg.ConversationTTL)
	intents := conversation.NewIntentClassifier(genaiClient, cfg.GeminiModel, log)
	conversationSvc := conversation.NewService(
		store, intents, extractor, builder, persister,
		gateway, whatsappClient, eventBus, cfg.GrowerID, log,
	)

	eventBus.Subscribe(domainevents.ConversationExpiredName, conversation.NewExpiryNotifier(whatsappClient, log))
	eventBus.Subscribe(domainevents.ConsumptionSavedName, conversation.NewSavedRecordAuditor(log))

	var transcriber preprocess.Transcriber
	if cfg.WhisperModelPath != "" {
		whisperTranscriber, err := preprocess.NewWhisperTranscriber(cfg.WhisperModelPath, log)
		if err != nil {
			log.Error("failed to load whisper model", "error", err)
			panic("failed to load whisper model: " + err.Error())
		}
		defer whisperTranscriber.Close()
		transcriber = whisperTranscriber
		log.Info("whisper model loaded", "path", cfg.WhisperModelPath)
	} else {
		log.Warn("WHISPER_MODEL_PATH not configured; audio messages disabled")
	}

	describer := preprocess.NewGeminiDescriber(genaiClient, cfg.GeminiModel, log)

	var archiver preprocess.Archiver
	if cfg.MediaArchiveEnabled {
		minioArchiver, err := preprocess.NewMinioArchiver(preprocess.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, log)
		if err != nil {
			log.Error("failed to initialize media archiver", "error", err)
			panic("failed to initialize media archiver: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure media bucket", 5, 2*time.Second, func() error {
			return minioArchiver.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure media bucket", "error", err)
			panic("failed to ensure media bucket: " + err.Error())
		}
		archiver = minioArchiver
		log.Info("media archive enabled", "bucket", cfg.MinioBucket)
	}

	preprocessor := preprocess.NewService(transcriber, describer, archiver, log)

	// ========================================================================
	// Background Workers
	// ========================================================================

	schedulerClient, err := scheduler.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer schedulerClient.Close()

	worker, err := scheduler.NewWorker(cfg.RedisURL, 10, preprocessor, conversationSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	go worker.Run(ctx)

	expiryListener := conversation.NewExpiryListener(redisClient, eventBus, log)
	go func() {
		if err := expiryListener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("expiry listener stopped", "error", err)
		}
	}()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	webhookModule := webhook.NewModule(schedulerClient, cfg.WebhookToken, val, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			webhookModule,
		},
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.New(app),
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func farmBaseURLs(cfg *config.Config) []string {
	urls := []string{cfg.FarmAPIBaseURL}
	if cfg.FarmAuthBaseURL != "" && cfg.FarmAuthBaseURL != cfg.FarmAPIBaseURL {
		urls = append(urls, cfg.FarmAuthBaseURL)
	}
	return urls
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
