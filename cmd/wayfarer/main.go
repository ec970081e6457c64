package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/config"
	dbRedis "github.com/wayfarer-app/wayfarer/internal/db/redis"
	logpkg "github.com/wayfarer-app/wayfarer/internal/logger"
	"github.com/wayfarer-app/wayfarer/internal/metrics"
	blockrepo "github.com/wayfarer-app/wayfarer/internal/repository/block"
	experiencerepo "github.com/wayfarer-app/wayfarer/internal/repository/experience"
	personrepo "github.com/wayfarer-app/wayfarer/internal/repository/person"
	"github.com/wayfarer-app/wayfarer/internal/repository/postgres"
	scenerepo "github.com/wayfarer-app/wayfarer/internal/repository/scene"
	"github.com/wayfarer-app/wayfarer/internal/repository/searchindex"
	chiTransport "github.com/wayfarer-app/wayfarer/internal/transport/chi"
	experiencesuc "github.com/wayfarer-app/wayfarer/internal/usecase/experiences"
	healthuc "github.com/wayfarer-app/wayfarer/internal/usecase/health"
	reindexuc "github.com/wayfarer-app/wayfarer/internal/usecase/reindex"
	scenesuc "github.com/wayfarer-app/wayfarer/internal/usecase/scenes"
	searchuc "github.com/wayfarer-app/wayfarer/internal/usecase/search"
	"github.com/wayfarer-app/wayfarer/internal/version"
	"github.com/wayfarer-app/wayfarer/internal/worker"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wayfarer API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	ctx := context.Background()

	// Relational store
	sqlDB, err := postgres.Open(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to open postgres", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := postgres.WaitForReady(ctx, sqlDB, time.Duration(cfg.Postgres.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	if err := postgres.EnsureSchema(ctx, sqlDB); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Search index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Repositories
	expRepo := experiencerepo.New(sqlDB)
	scnRepo := scenerepo.New(sqlDB)
	blkRepo := blockrepo.New(sqlDB)
	perRepo := personrepo.New(sqlDB)
	indexRepo := searchindex.New(store)

	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}

	// Use case services
	reindexSvc := reindexuc.New(expRepo, scnRepo, indexRepo)

	queue := worker.NewQueue(reindexSvc, cfg.Index.QueueBuffer, logger)
	workerCtx, stopWorker := context.WithCancel(logpkg.ContextWithLogger(ctx, logger))
	queue.Start(workerCtx)

	expSvc := experiencesuc.New(expRepo, blkRepo, queue)
	scnSvc := scenesuc.New(scnRepo, expRepo, queue)
	searchSvc := searchuc.New(indexRepo, expRepo, perRepo, blkRepo)
	healthSvc := healthuc.New(sqlDB, store)

	// Periodic full-range reconciliation sweep
	var sweeper *cron.Cron
	if cfg.Index.SweepSchedule != "" {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.Index.SweepSchedule, func() {
			sweepCtx := logpkg.ContextWithLogger(context.Background(), logger)
			if err := reindexSvc.SweepAll(sweepCtx); err != nil {
				logger.Warn("periodic sweep finished with errors", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("Invalid sweep schedule", zap.Error(err))
		}
		sweeper.Start()
		logger.Info("Periodic reindex sweep scheduled", zap.String("schedule", cfg.Index.SweepSchedule))
	}

	// HTTP server
	server := chiTransport.NewServer(expSvc, scnSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(perRepo))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	queue.Stop()
	stopWorker()

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
