package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/database"
	"github.com/bunkmate/bunkmate-backend/internal/handler"
	"github.com/bunkmate/bunkmate-backend/internal/logger"
	"github.com/bunkmate/bunkmate-backend/internal/metrics"
	"github.com/bunkmate/bunkmate-backend/internal/middleware"
	"github.com/bunkmate/bunkmate-backend/internal/notification"
	"github.com/bunkmate/bunkmate-backend/internal/queue"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
	"github.com/bunkmate/bunkmate-backend/internal/router"
	"github.com/bunkmate/bunkmate-backend/internal/service"
	"github.com/bunkmate/bunkmate-backend/internal/validator"
	"github.com/bunkmate/bunkmate-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Bunk Mate Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Zone Memory & Metrics ─────────────────────────────────────────
	alerts := alert.NewRegistry()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(alerts.Sessions)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	recordRepo := repository.NewAttendanceRecordRepository(pool)
	friendRepo := repository.NewFriendRepository(pool)
	sessionRepo := repository.NewSessionRepository(rdb)

	recordQueue := queue.NewRecordQueue(rdb)
	publisher := notification.NewPublisher(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, sessionRepo, alerts, log)
	profileService := service.NewProfileService(userRepo)
	subjectService := service.NewSubjectService(subjectRepo, recordRepo, recordQueue, publisher, alerts, m, log)
	friendService := service.NewFriendService(userRepo, friendRepo, subjectRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, profileService, log),
		Subject: handler.NewSubjectHandler(subjectService, log),
		Friend:  handler.NewFriendHandler(friendService, log),
		WS:      handler.NewWSHandler(publisher, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	recordWorker := worker.NewRecordWorker(recordQueue, recordRepo, m, log)
	workers.Add(2)
	go func() {
		defer workers.Done()
		recordWorker.Start(workerCtx)
	}()

	// Discard zone memory of sessions whose token expired without a sign-out.
	go func() {
		defer workers.Done()
		alerts.Run(workerCtx, time.Minute)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(cfg, router.Deps{
		Auth:        authService,
		Metrics:     m,
		AuthLimiter: middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute),
		Health: func(ctx context.Context) database.Health {
			return database.Check(ctx, pool, rdb)
		},
	}, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the record queue to drain.
	workerCancel()
	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Worker drain timed out")
	}

	lenCtx, lenCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer lenCancel()
	if pending, err := recordQueue.Len(lenCtx); err == nil && pending > 0 {
		log.Warn().Int64("pending", pending).Msg("Attendance records left in queue")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
