package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/niyonkuru/momo-tracker/internal/logger"
)

const (
	ingestRunsTable = "ingest_runs"
	engineVersion   = "v1"
)

// RunCounts carries the message counters recorded when an ingest run
// finishes successfully.
type RunCounts struct {
	TotalMessages int64
	Classified    int64
	Unrecognized  int64
	Duplicates    int64
}

// StartIngestRun inserts a new row into momo.ingest_runs with status=RUNNING
// and returns the generated ingest_run_id.
func StartIngestRun(ctx context.Context, exportID string) (string, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("StartIngestRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartIngestRunWithClient(ctx, client, exportID)
}

// StartIngestRunWithClient inserts a new row into momo.ingest_runs with status=RUNNING
// and returns the generated ingest_run_id using the provided BigQuery client.
func StartIngestRunWithClient(ctx context.Context, client *bigquery.Client, exportID string) (string, error) {
	ingestRunID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			ingest_run_id,
			export_id,
			started_ts,
			engine_version,
			status
		)
		VALUES (
			@ingest_run_id,
			@export_id,
			@started_ts,
			@engine_version,
			@status
		)
	`, datasetID, ingestRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "ingest_run_id", Value: ingestRunID},
		{Name: "export_id", Value: exportID},
		{Name: "started_ts", Value: started},
		{Name: "engine_version", Value: engineVersion},
		{Name: "status", Value: "RUNNING"},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartIngestRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartIngestRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartIngestRun: job error: %w", err)
	}

	return ingestRunID, nil
}

// MarkIngestRunFailed sets status=FAILED, finished_ts and error_message.
func MarkIngestRunFailed(ctx context.Context, ingestRunID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Error().
			Err(err).
			Str("ingest_run_id", ingestRunID).
			Msg("MarkIngestRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	MarkIngestRunFailedWithClient(ctx, client, ingestRunID, runErr)
}

// MarkIngestRunFailedWithClient sets status=FAILED, finished_ts and error_message
// using the provided BigQuery client.
func MarkIngestRunFailedWithClient(ctx context.Context, client *bigquery.Client, ingestRunID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE ingest_run_id = @ingest_run_id
	`, datasetID, ingestRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "ingest_run_id", Value: ingestRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("ingest_run_id", ingestRunID).
			Msg("MarkIngestRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("ingest_run_id", ingestRunID).
			Msg("MarkIngestRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("ingest_run_id", ingestRunID).
			Msg("MarkIngestRunFailed: job completed with error")
	}
}

// MarkIngestRunSucceeded sets status=SUCCESS, finished_ts and the message
// counters, and clears error_message.
func MarkIngestRunSucceeded(ctx context.Context, ingestRunID string, counts RunCounts) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkIngestRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkIngestRunSucceededWithClient(ctx, client, ingestRunID, counts)
}

// MarkIngestRunSucceededWithClient sets status=SUCCESS, finished_ts and the
// message counters using the provided BigQuery client.
func MarkIngestRunSucceededWithClient(ctx context.Context, client *bigquery.Client, ingestRunID string, counts RunCounts) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    total_messages = @total_messages,
		    classified = @classified,
		    unrecognized = @unrecognized,
		    duplicates = @duplicates
		WHERE ingest_run_id = @ingest_run_id
	`, datasetID, ingestRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "total_messages", Value: counts.TotalMessages},
		{Name: "classified", Value: counts.Classified},
		{Name: "unrecognized", Value: counts.Unrecognized},
		{Name: "duplicates", Value: counts.Duplicates},
		{Name: "ingest_run_id", Value: ingestRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkIngestRunSucceeded: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkIngestRunSucceeded: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkIngestRunSucceeded: job error: %w", err)
	}

	return nil
}
