package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/clinicdesk/frontdesk-api/internal/config"
	"github.com/clinicdesk/frontdesk-api/internal/handler"
	appointmentHandler "github.com/clinicdesk/frontdesk-api/internal/handler/appointment"
	patientHandler "github.com/clinicdesk/frontdesk-api/internal/handler/patient"
	"github.com/clinicdesk/frontdesk-api/internal/middleware"
	"github.com/clinicdesk/frontdesk-api/internal/repository/postgres"
	"github.com/clinicdesk/frontdesk-api/internal/router"
	"github.com/clinicdesk/frontdesk-api/internal/service/directory"
	"github.com/clinicdesk/frontdesk-api/internal/service/ledger"
	"github.com/clinicdesk/frontdesk-api/internal/service/scheduler"
	"github.com/clinicdesk/frontdesk-api/pkg/logger"
	"github.com/clinicdesk/frontdesk-api/pkg/messaging/redis"
	"github.com/clinicdesk/frontdesk-api/pkg/metrics"
	"github.com/clinicdesk/frontdesk-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	directorySvc := directory.NewService(patientRepo)
	ledgerSvc := ledger.NewService(patientRepo)
	schedulerSvc := scheduler.NewService(appointmentRepo, patientRepo)

	h := handler.NewHandler()
	patientH := patientHandler.NewHandler(directorySvc, ledgerSvc, outboxRepo)
	appointmentH := appointmentHandler.NewHandler(schedulerSvc, outboxRepo)

	r := router.NewRouter(patientH, appointmentH, h, router.RouterConfig{
		RateLimit:      rate.Limit(cfg.RateLimit.RPS),
		RateBurst:      cfg.RateLimit.Burst,
		CORSConfig:     middleware.DefaultCORSConfig(),
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MetricsPrefix:  "frontdesk",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	brokerLog := log.Logger
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &brokerLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	defer stopOutbox()

	outboxProcessor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval,
		},
		logger.NewLogger(nil),
		metrics.NewMetrics("frontdesk", "outbox"),
	)
	go outboxProcessor.Start(outboxCtx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopOutbox()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
