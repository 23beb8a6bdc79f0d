package bigquery

import "time"

type ProcessingLogRow struct {
	LogID       string `bigquery:"log_id"`        // REQUIRED
	IngestRunID string `bigquery:"ingest_run_id"` // REQUIRED
	ExportID    string `bigquery:"export_id"`     // NULLABLE

	Reason  string `bigquery:"reason"`  // REQUIRED
	Body    string `bigquery:"body"`    // NULLABLE, preserved verbatim for grammar review
	Details string `bigquery:"details"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}
