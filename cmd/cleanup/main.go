package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/config"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/infra/logger"
	s3infra "github.com/MichaelMishaev/netanyaLife-sub002/internal/infra/s3"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/jobs/cleanup"
	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	mediasvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/media"
)

const rejectedRetention = 90 * 24 * time.Hour

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	s3Client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		log.Fatal("connect s3", zap.Error(err))
	}

	job := cleanup.New(
		pgrepo.NewPendingBusinessRepo(pool),
		pgrepo.NewPendingEditRepo(pool),
		pgrepo.NewPhotoRepo(pool),
		mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket),
		rejectedRetention,
		log,
	)

	if err := job.Run(ctx); err != nil {
		log.Fatal("cleanup run failed", zap.Error(err))
	}

	log.Info("cleanup run finished")
}
