package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niyonkuru/momo-tracker/internal/config"
	"github.com/niyonkuru/momo-tracker/internal/gcs"
	infraBQ "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/ingest"
	"github.com/niyonkuru/momo-tracker/internal/jobs/inmemory"
	"github.com/niyonkuru/momo-tracker/internal/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	infraBQ.Configure(cfg.ProjectID, cfg.DatasetID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := infraBQ.NewBigQueryExportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export repository")
	}
	defer repo.Close()

	svc := ingest.NewService(repo, gcs.NewClient())

	// In production, the in-memory queue would be replaced with Cloud Tasks
	// or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	log.Info().Msg("Starting worker service")

	if err := jobQueue.Start(ctx, svc.JobHandler(log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
