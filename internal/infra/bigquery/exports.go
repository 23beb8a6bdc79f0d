package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type ExportRow struct {
	ExportID string `bigquery:"export_id"` // REQUIRED
	GCSURI   string `bigquery:"gcs_uri"`   // REQUIRED

	OriginalFilename string `bigquery:"original_filename"` // NULLABLE
	ChecksumSHA256   string `bigquery:"checksum_sha256"`   // NULLABLE

	UploadTS    time.Time              `bigquery:"upload_ts"`    // REQUIRED
	ProcessedTS bigquery.NullTimestamp `bigquery:"processed_ts"` // NULLABLE

	IngestStatus string `bigquery:"ingest_status"` // NULLABLE

	MessageCount bigquery.NullInt64 `bigquery:"message_count"` // NULLABLE
}
