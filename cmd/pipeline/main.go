package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/database"
	"github.com/jengzang/flights-backend-go/internal/logger"
	"github.com/jengzang/flights-backend-go/internal/pipeline"
)

func main() {
	replay := flag.String("replay", "", "apply a curated parquet file instead of fetching")
	flag.Parse()

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
		os.Exit(1)
	}

	var report *pipeline.Report
	if *replay != "" {
		report, err = p.Replay(ctx, *replay)
	} else {
		report, err = p.RunOnce(ctx)
	}
	if err != nil {
		log.Error("pipeline failed", logger.Err(err))
		db.Close()
		os.Exit(1)
	}

	log.Info("pipeline completed",
		"cycle_seq", report.Result.CycleSeq,
		"curated_file", report.CuratedFile,
		"states", report.States,
		"inserted", report.Result.Inserted,
		"promoted", report.Result.Promoted,
		"track_points", report.Result.TrackPoints,
		"alerts", report.Result.AlertLevels,
		"duration", report.Duration,
	)
}
