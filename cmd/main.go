package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"heat-alert-service/internal/api"
	"heat-alert-service/internal/config"
	"heat-alert-service/internal/db"
	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/kafka"
	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/metrics"
	"heat-alert-service/internal/mqtt"
	"heat-alert-service/internal/notification"
	"heat-alert-service/internal/providers"
	"heat-alert-service/internal/threshold"
	"heat-alert-service/internal/throttle"
	"heat-alert-service/internal/utils"
	"heat-alert-service/internal/websocket"
)

type store interface {
	ingest.ReadingStore
	api.Store
	notification.AlertLog
	Close()
}

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	metrics.Init()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to database
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("Failed to open reading store: %v", err)
		log.Fatalf("Reading store unavailable: %v", err)
	}
	defer st.Close()

	if cfg.DB.ClearOnStart {
		n, err := st.ClearReadings(ctx)
		if err != nil {
			logger.Errorf("Startup clear failed: %v", err)
		} else {
			logger.Infof("Cleared %d readings on startup", n)
		}
	}

	// Initialize notification service
	svc := notification.New(st, logger, textGenerator(ctx, cfg, logger), caller(cfg, logger), notification.Settings{
		Recipient:  cfg.Twilio.ToNumber,
		MaxAlerts:  cfg.Alert.MaxPerEvent,
		QueueSize:  cfg.Notification.QueueSize,
		MaxWorkers: cfg.Notification.MaxWorkers,
		Timeout:    cfg.DispatchTimeout(),
	}, mirrorOptions(cfg, logger)...)
	var wg sync.WaitGroup
	svc.Start(&wg)

	// Live dashboard and event stream
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	publishers := []ingest.Publisher{hub}
	var events *kafka.Publisher
	if cfg.Kafka.Broker != "" && cfg.Kafka.EventsTopic != "" {
		events = kafka.NewPublisher([]string{cfg.Kafka.Broker}, cfg.Kafka.EventsTopic, logger)
		publishers = append(publishers, events)
		logger.Infof("Publishing alert events to Kafka topic %s", cfg.Kafka.EventsTopic)
	}

	machine := throttle.New(
		threshold.NewEvaluator(cfg.Alert.DangerF, cfg.Alert.CautionOffsetF),
		cfg.Alert.MaxPerEvent,
		cfg.Cooldown(),
	)
	gateway := ingest.NewGateway(st, machine, svc, logger,
		ingest.WithPublisher(ingest.NewMultiPublisher(publishers...)))

	// Alternate ingestion transports
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" && cfg.Kafka.ReadingsTopic != "" {
		consumer = kafka.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.ReadingsTopic, cfg.Kafka.GroupID, gateway, logger)
		consumer.Start(ctx, &wg)
	}
	if cfg.MQTT.Broker != "" {
		sub := mqtt.NewSubscriber(cfg.MQTT.Broker, cfg.MQTT.Topic, gateway, logger)
		if err := sub.Connect(ctx); err != nil {
			logger.Errorf("MQTT subscriber disabled: %v", err)
		}
	}

	// Start API server
	handler := api.NewHandler(gateway, st, machine, hub, logger, cfg.Query.PageSize)
	router := api.NewRouter(logger, cfg, handler)
	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	if consumer != nil {
		consumer.Close()
	}
	svc.Stop()
	wg.Wait()
	if events != nil {
		events.Close()
	}
	logger.Info("Service stopped")
}

// openStore connects to Postgres when a DSN is configured, otherwise keeps readings in memory.
func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (store, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("DB_DSN not set, using in-memory reading store")
		return db.NewMemoryStore(), nil
	}

	conn, err := db.New(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := utils.Retry(ctx, logger, 5, 2*time.Second, conn.Ping); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info("Connected to Postgres reading store")
	return conn, nil
}

func textGenerator(ctx context.Context, cfg config.Config, logger *logging.Logger) notification.TextGenerator {
	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using template alert text")
		return providers.TemplateText{}
	}
	g, err := providers.NewGeminiText(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Errorf("Gemini client init failed, using template alert text: %v", err)
		return providers.TemplateText{}
	}
	return g
}

func caller(cfg config.Config, logger *logging.Logger) notification.Caller {
	if !cfg.TelephonyEnabled() {
		logger.Warn("Twilio not configured, alerts will only be logged")
		return providers.LogCaller{Logger: logger}
	}
	return providers.NewTwilioCaller(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, logger)
}

func mirrorOptions(cfg config.Config, logger *logging.Logger) []notification.Option {
	if !cfg.TelegramEnabled() {
		return nil
	}
	return []notification.Option{
		notification.WithMirror(providers.NewTelegramMirror(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond, logger)),
	}
}
