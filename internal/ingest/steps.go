package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niyonkuru/momo-tracker/internal/engine"
	"github.com/niyonkuru/momo-tracker/internal/gcs"
	infra "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/smsxml"
)

// Step represents a single step in the ingestion pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps.
type State struct {
	ExportID    string
	GCSURI      string
	IngestRunID string

	XMLBytes []byte
	Messages []engine.RawMessage
	Result   engine.Result
}

// StartIngestRunStep starts an ingest run (status=RUNNING).
type StartIngestRunStep struct {
	Repo infra.ExportRepository
}

func (s *StartIngestRunStep) Execute(ctx context.Context, state *State) error {
	ingestRunID, err := s.Repo.StartIngestRun(ctx, state.ExportID)
	if err != nil {
		return err
	}
	state.IngestRunID = ingestRunID
	return nil
}

// FetchExportStep fetches the export XML bytes from GCS.
type FetchExportStep struct {
	Storage gcs.StorageService
	Repo    infra.ExportRepository
}

func (s *FetchExportStep) Execute(ctx context.Context, state *State) error {
	xmlBytes, err := s.Storage.Fetch(ctx, state.GCSURI)
	if err != nil {
		s.Repo.MarkIngestRunFailed(ctx, state.IngestRunID, err)
		return err
	}
	state.XMLBytes = xmlBytes
	return nil
}

// DecodeMessagesStep decodes the export XML into raw messages.
type DecodeMessagesStep struct {
	Repo infra.ExportRepository
}

func (s *DecodeMessagesStep) Execute(ctx context.Context, state *State) error {
	msgs, err := smsxml.DecodeBytes(state.XMLBytes)
	if err != nil {
		s.Repo.MarkIngestRunFailed(ctx, state.IngestRunID, err)
		return err
	}
	state.Messages = msgs
	return nil
}

// ExtractTransactionsStep runs the extraction engine over the decoded messages.
type ExtractTransactionsStep struct {
	Engine *engine.Pipeline
	Repo   infra.ExportRepository
}

func (s *ExtractTransactionsStep) Execute(ctx context.Context, state *State) error {
	result, err := s.Engine.Run(state.Messages)
	if err != nil {
		s.Repo.MarkIngestRunFailed(ctx, state.IngestRunID, err)
		return err
	}
	state.Result = result
	return nil
}

// InsertTransactionsStep inserts extracted records into the transactions table.
type InsertTransactionsStep struct {
	Repo infra.ExportRepository
}

func (s *InsertTransactionsStep) Execute(ctx context.Context, state *State) error {
	rows := make([]*infra.TransactionRow, 0, len(state.Result.Records))
	for _, rec := range state.Result.Records {
		rows = append(rows, infra.TransactionRowFromRecord(rec, state.ExportID, state.IngestRunID))
	}
	if err := s.Repo.InsertTransactions(ctx, rows); err != nil {
		s.Repo.MarkIngestRunFailed(ctx, state.IngestRunID, err)
		return err
	}
	return nil
}

// RecordDiagnosticsStep writes unrecognized messages to the processing log.
type RecordDiagnosticsStep struct {
	Repo infra.ExportRepository
}

func (s *RecordDiagnosticsStep) Execute(ctx context.Context, state *State) error {
	rows := make([]*infra.ProcessingLogRow, 0, len(state.Result.Diagnostics))
	for _, d := range state.Result.Diagnostics {
		rows = append(rows, &infra.ProcessingLogRow{
			LogID:       uuid.NewString(),
			IngestRunID: state.IngestRunID,
			ExportID:    state.ExportID,
			Reason:      d.Reason,
			Body:        d.Body,
			CreatedTS:   time.Now(),
		})
	}
	if err := s.Repo.InsertProcessingLog(ctx, rows); err != nil {
		s.Repo.MarkIngestRunFailed(ctx, state.IngestRunID, err)
		return err
	}
	return nil
}

// MarkSuccessStep marks the ingest run as SUCCESS with its counters and
// stamps the export row.
type MarkSuccessStep struct {
	Repo infra.ExportRepository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *State) error {
	counts := infra.RunCounts{
		TotalMessages: int64(state.Result.Stats.Total),
		Classified:    int64(state.Result.Stats.Classified),
		Unrecognized:  int64(state.Result.Stats.Unrecognized),
		Duplicates:    int64(state.Result.Stats.Duplicates),
	}
	if err := s.Repo.MarkIngestRunSucceeded(ctx, state.IngestRunID, counts); err != nil {
		return err
	}
	return s.Repo.MarkExportProcessed(ctx, state.ExportID, "INGESTED", counts.TotalMessages)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
