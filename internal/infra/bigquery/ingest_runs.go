package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type IngestRunRow struct {
	IngestRunID string `bigquery:"ingest_run_id"` // REQUIRED
	ExportID    string `bigquery:"export_id"`     // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	EngineVersion string `bigquery:"engine_version"` // NULLABLE

	Status       string `bigquery:"status"`        // REQUIRED: RUNNING, SUCCESS, FAILED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TotalMessages bigquery.NullInt64 `bigquery:"total_messages"` // NULLABLE
	Classified    bigquery.NullInt64 `bigquery:"classified"`     // NULLABLE
	Unrecognized  bigquery.NullInt64 `bigquery:"unrecognized"`   // NULLABLE
	Duplicates    bigquery.NullInt64 `bigquery:"duplicates"`     // NULLABLE
}
