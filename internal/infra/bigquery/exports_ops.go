package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const exportsTable = "exports"

// InsertExport inserts a single ExportRow into momo.exports.
func InsertExport(ctx context.Context, row *ExportRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertExport: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertExportWithClient(ctx, client, row)
}

// InsertExportWithClient inserts a single ExportRow into momo.exports
// using the provided BigQuery client.
func InsertExportWithClient(ctx context.Context, client *bigquery.Client, row *ExportRow) error {
	inserter := client.Dataset(datasetID).Table(exportsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertExport: inserting row: %w", err)
	}

	return nil
}

// MarkExportProcessedWithClient sets ingest_status, processed_ts and
// message_count on an export after an ingest run finishes, using the provided
// BigQuery client.
func MarkExportProcessedWithClient(ctx context.Context, client *bigquery.Client, exportID, status string, messageCount int64) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET ingest_status = @ingest_status,
		    processed_ts = @processed_ts,
		    message_count = @message_count
		WHERE export_id = @export_id
	`, datasetID, exportsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "ingest_status", Value: status},
		{Name: "processed_ts", Value: time.Now()},
		{Name: "message_count", Value: messageCount},
		{Name: "export_id", Value: exportID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkExportProcessed: running update query: %w", err)
	}

	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkExportProcessed: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("MarkExportProcessed: job error: %w", err)
	}

	return nil
}

// FindExportByChecksumWithClient returns the export with the given SHA-256
// checksum, or nil when no matching export exists. Used to skip re-uploading
// a file that has already been ingested.
func FindExportByChecksumWithClient(ctx context.Context, client *bigquery.Client, checksum string) (*ExportRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			export_id,
			gcs_uri,
			original_filename,
			checksum_sha256,
			upload_ts,
			processed_ts,
			ingest_status,
			message_count
		FROM %s.%s
		WHERE checksum_sha256 = @checksum
		ORDER BY upload_ts DESC
		LIMIT 1
	`, datasetID, exportsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "checksum", Value: checksum},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindExportByChecksum: query read: %w", err)
	}

	var r ExportRow
	err = it.Next(&r)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindExportByChecksum: iter next: %w", err)
	}

	return &r, nil
}

// ListAllExportsWithClient returns every export ordered by upload time,
// newest first.
func ListAllExportsWithClient(ctx context.Context, client *bigquery.Client) ([]*ExportRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			export_id,
			gcs_uri,
			original_filename,
			checksum_sha256,
			upload_ts,
			processed_ts,
			ingest_status,
			message_count
		FROM %s.%s
		ORDER BY upload_ts DESC
	`, datasetID, exportsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllExports: query read: %w", err)
	}

	var rows []*ExportRow
	for {
		var r ExportRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAllExports: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
