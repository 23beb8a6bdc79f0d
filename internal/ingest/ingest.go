package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/niyonkuru/momo-tracker/internal/engine"
	"github.com/niyonkuru/momo-tracker/internal/gcs"
	infra "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/jobs"
	"github.com/niyonkuru/momo-tracker/internal/logger"
)

// Service ties the extraction engine to its storage and persistence
// collaborators. It owns the rule table; each ingest gets a fresh engine
// pipeline so runs never share state.
type Service struct {
	repo    infra.ExportRepository
	storage gcs.StorageService
	rules   []engine.Rule
	workers int
}

// NewService creates an ingestion service over the default recognizer table.
func NewService(repo infra.ExportRepository, storage gcs.StorageService) *Service {
	return &Service{
		repo:    repo,
		storage: storage,
		rules:   engine.DefaultRules(),
		workers: 4,
	}
}

// RegisterExport inserts an exports row for a file already uploaded to GCS
// and returns the generated export_id. If an export with the same checksum
// already exists, its ID is returned and no new row is written.
func (s *Service) RegisterExport(ctx context.Context, gcsURI, filename, checksum string) (string, error) {
	if checksum != "" {
		existing, err := s.repo.FindExportByChecksum(ctx, checksum)
		if err != nil {
			return "", fmt.Errorf("RegisterExport: checksum lookup: %w", err)
		}
		if existing != nil {
			return existing.ExportID, nil
		}
	}

	exportID := uuid.NewString()
	row := &infra.ExportRow{
		ExportID:         exportID,
		GCSURI:           gcsURI,
		OriginalFilename: filename,
		ChecksumSHA256:   checksum,
		UploadTS:         time.Now(),
		IngestStatus:     "PENDING",
	}
	if err := s.repo.InsertExport(ctx, row); err != nil {
		return "", fmt.Errorf("RegisterExport: %w", err)
	}
	return exportID, nil
}

// IngestExport runs the full ingestion pipeline for one export: start a run,
// fetch the XML from GCS, decode it, extract transactions, persist them along
// with the diagnostic log, and close out the run.
func (s *Service) IngestExport(ctx context.Context, exportID, gcsURI string) (engine.Stats, error) {
	log := logger.FromContext(ctx)

	eng := engine.New(s.rules,
		engine.WithLogger(log),
		engine.WithWorkers(s.workers),
	)

	state := &State{
		ExportID: exportID,
		GCSURI:   gcsURI,
	}

	pipeline := NewPipeline(
		&StartIngestRunStep{Repo: s.repo},
		&FetchExportStep{Storage: s.storage, Repo: s.repo},
		&DecodeMessagesStep{Repo: s.repo},
		&ExtractTransactionsStep{Engine: eng, Repo: s.repo},
		&InsertTransactionsStep{Repo: s.repo},
		&RecordDiagnosticsStep{Repo: s.repo},
		&MarkSuccessStep{Repo: s.repo},
	)

	if err := pipeline.Execute(ctx, state); err != nil {
		log.Error().
			Err(err).
			Str("export_id", exportID).
			Str("ingest_run_id", state.IngestRunID).
			Msg("Export ingestion failed")
		return state.Result.Stats, err
	}

	log.Info().
		Str("export_id", exportID).
		Str("ingest_run_id", state.IngestRunID).
		Int("classified", state.Result.Stats.Classified).
		Int("unrecognized", state.Result.Stats.Unrecognized).
		Msg("Export ingested")

	return state.Result.Stats, nil
}

// JobHandler adapts the service to the job queue. The returned handler
// rejects job types it does not recognize instead of retrying them.
func (s *Service) JobHandler(log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		ij, ok := job.(*jobs.IngestExportJob)
		if !ok {
			return fmt.Errorf("JobHandler: unexpected job type %s", job.GetType())
		}

		ctx = logger.WithContext(ctx, log.With().Str("job_id", ij.JobID).Logger())
		_, err := s.IngestExport(ctx, ij.ExportID, ij.GCSURI)
		return err
	}
}
