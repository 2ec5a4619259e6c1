package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/database"
	"github.com/jengzang/flights-backend-go/internal/logger"
	"github.com/jengzang/flights-backend-go/internal/pipeline"
	"github.com/jengzang/flights-backend-go/internal/scheduler"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", logger.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	p, err := pipeline.FromConfig(cfg, db, log)
	if err != nil {
		log.Error("failed to build pipeline", logger.Err(err))
		db.Close()
		os.Exit(1)
	}

	s := scheduler.New(p, cfg.Interval, log.With("component", "scheduler"))
	if err := s.Run(ctx); err != nil {
		log.Error("scheduler stopped with error", logger.Err(err))
		db.Close()
		os.Exit(1)
	}
}
