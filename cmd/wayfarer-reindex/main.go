// Command wayfarer-reindex rebuilds the experience search index from the
// relational store. With no flags it sweeps the full id range.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/config"
	dbRedis "github.com/wayfarer-app/wayfarer/internal/db/redis"
	logpkg "github.com/wayfarer-app/wayfarer/internal/logger"
	experiencerepo "github.com/wayfarer-app/wayfarer/internal/repository/experience"
	"github.com/wayfarer-app/wayfarer/internal/repository/postgres"
	scenerepo "github.com/wayfarer-app/wayfarer/internal/repository/scene"
	"github.com/wayfarer-app/wayfarer/internal/repository/searchindex"
	reindexuc "github.com/wayfarer-app/wayfarer/internal/usecase/reindex"
)

func main() {
	from := flag.Int64("from", 0, "first experience id to sweep (0 sweeps from the start)")
	to := flag.Int64("to", 0, "last experience id to sweep (0 sweeps to the current max)")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)

	sqlDB, err := postgres.Open(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to open postgres", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := postgres.WaitForReady(ctx, sqlDB, time.Duration(cfg.Postgres.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}

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

	expRepo := experiencerepo.New(sqlDB)
	scnRepo := scenerepo.New(sqlDB)
	indexRepo := searchindex.New(store)

	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}

	svc := reindexuc.New(expRepo, scnRepo, indexRepo)

	start := time.Now()
	switch {
	case *from == 0 && *to == 0:
		err = svc.SweepAll(ctx)
	default:
		first := *from
		if first < 1 {
			first = 1
		}
		last := *to
		if last == 0 {
			last, err = expRepo.MaxID(ctx)
			if err != nil {
				logger.Fatal("Failed to read max experience id", zap.Error(err))
			}
		}
		err = svc.Sweep(ctx, first, last)
	}
	if err != nil {
		logger.Fatal("Sweep finished with errors", zap.Error(err))
	}

	logger.Info("Sweep complete", zap.Duration("elapsed", time.Since(start)))
}
