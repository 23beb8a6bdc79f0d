package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/niyonkuru/momo-tracker/internal/api/handlers"
	"github.com/niyonkuru/momo-tracker/internal/api/middleware"
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

	if cfg.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - export uploads will be disabled")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewBigQueryExportRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export repository")
	}
	defer repo.Close()

	storage := gcs.NewClient()
	svc := ingest.NewService(repo, storage)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	// Process ingest jobs in the same process. A separate worker deployment
	// would run cmd/worker instead.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, svc.JobHandler(log)); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	exportsHandler := handlers.NewExportsHandler(repo, svc, storage, jobQueue, cfg.Bucket, log)
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	runsHandler := handlers.NewRunsHandler(repo, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/exports", exportsHandler.ListExports)
		r.Post("/exports", exportsHandler.UploadExport)
		r.Post("/exports/ingest", exportsHandler.EnqueueIngest)

		r.Get("/transactions", transactionsHandler.ListTransactions)
		r.Get("/transactions/summary", transactionsHandler.SummaryByKind)

		r.Get("/runs/{runID}/log", runsHandler.ListProcessingLog)

		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{jobID}", jobsHandler.GetJob)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
