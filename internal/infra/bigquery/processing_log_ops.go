package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const processingLogTable = "processing_log"

// InsertProcessingLogWithClient inserts a batch of ProcessingLogRow into
// momo.processing_log using the provided BigQuery client.
func InsertProcessingLogWithClient(ctx context.Context, client *bigquery.Client, rows []*ProcessingLogRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(datasetID).Table(processingLogTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertProcessingLog: inserting rows: %w", err)
	}

	return nil
}

// ListProcessingLogByRunWithClient returns the processing log entries for one
// ingest run, oldest first.
func ListProcessingLogByRunWithClient(ctx context.Context, client *bigquery.Client, ingestRunID string) ([]*ProcessingLogRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			log_id,
			ingest_run_id,
			export_id,
			reason,
			body,
			details,
			created_ts
		FROM %s.%s
		WHERE ingest_run_id = @ingest_run_id
		ORDER BY created_ts
	`, datasetID, processingLogTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "ingest_run_id", Value: ingestRunID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListProcessingLogByRun: query read: %w", err)
	}

	var rows []*ProcessingLogRow
	for {
		var r ProcessingLogRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListProcessingLogByRun: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
