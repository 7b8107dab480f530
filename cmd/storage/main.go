package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storage-service/internal/MinIO"
	"storage-service/internal/config"
	"storage-service/internal/repository/fileRepo"
	"storage-service/internal/repository/folderRepo"
	"storage-service/internal/service/cascade"
	"storage-service/pkg/database/postgres"
	"storage-service/pkg/database/redis"
	"storage-service/pkg/logger"
)

// The storage daemon runs the cascade deletion workers. The synchronous
// operations (folder tree, file catalog, sharing, quota) are mounted by
// the transport process, which shares this module's service packages;
// only the asynchronous deletion path needs a resident consumer.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadStorageConfig()
	if err != nil {
		log.Fatal("Error loading config", zap.Error(err))
	}

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Error connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	blobs, err := MinIO.New(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("Error connecting to MinIO", zap.Error(err))
	}

	redisClient := redis.New(cfg.Redis)
	defer redisClient.Close()

	queue := cascade.NewRedisQueue(redisClient, cfg.CascadeQueue)
	worker := cascade.NewWorker(queue, folderRepo.New(pool), fileRepo.New(pool), blobs, log)

	for i := 0; i < cfg.CascadeWorkers; i++ {
		go worker.Run(ctx)
	}

	log.Info("storage service started",
		zap.Int("cascade_workers", cfg.CascadeWorkers))

	<-ctx.Done()
	log.Info("storage service stopping")
}
