package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/MichaelMishaev/netanyaLife-sub002/internal/config"
	"github.com/MichaelMishaev/netanyaLife-sub002/internal/infra/logger"
	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	ownerssvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/owners"
)

// Links registered owner accounts to listings whose submitter email matches.
// Meant to run from cron after new registrations.
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	businesses := pgrepo.NewBusinessRepo(pool)
	edits := pgrepo.NewPendingEditRepo(pool)
	owners := ownerssvc.NewService(businesses, edits, log)

	linked, err := owners.LinkByEmail(ctx)
	if err != nil {
		log.Fatal("link owners by email", zap.Error(err))
	}

	log.Info("owner linkage pass finished", zap.Int64("linked", linked))
}
