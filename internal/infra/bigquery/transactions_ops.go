package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// KindSummary is one row of the per-kind aggregation over a date range.
type KindSummary struct {
	Kind        string `bigquery:"kind"`
	Count       int64  `bigquery:"n"`
	TotalAmount int64  `bigquery:"total_amount"`
	TotalFees   int64  `bigquery:"total_fees"`
}

// InsertTransactions inserts a batch of TransactionRow into momo.transactions.
func InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("InsertTransactions: bigquery client: %w", err)
	}
	defer client.Close()

	return InsertTransactionsWithClient(ctx, client, rows)
}

// InsertTransactionsWithClient inserts a batch of TransactionRow into
// momo.transactions using the provided BigQuery client. Each row is sent with
// its transaction_id as the streaming insert ID, so retried batches do not
// produce duplicate rows.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	savers := make([]*bigquery.StructSaver, 0, len(rows))
	for _, row := range rows {
		savers = append(savers, &bigquery.StructSaver{
			Struct:   row,
			InsertID: row.TransactionID,
		})
	}

	table := client.DatasetInProject(projectID, datasetID).Table(transactionsTable)
	if err := table.Inserter().Put(ctx, savers); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// QueryTransactionsByDateRange queries transactions within the specified date range.
func QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: bigquery client: %w", err)
	}
	defer client.Close()

	return QueryTransactionsByDateRangeWithClient(ctx, client, startDate, endDate)
}

// QueryTransactionsByDateRangeWithClient queries transactions within the
// specified date range using the provided BigQuery client. Only includes
// transactions from successful ingest runs.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, startDate, endDate time.Time) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.export_id,
			t.ingest_run_id,
			t.kind,
			t.amount,
			t.fee,
			t.balance,
			t.counterparty,
			t.occurred_ts,
			t.transaction_date,
			t.raw_message,
			t.created_ts
		FROM %s.%s t
		INNER JOIN %s.%s ir
		  ON t.ingest_run_id = ir.ingest_run_id
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND ir.status = 'SUCCESS'
		ORDER BY t.occurred_ts, t.created_ts
	`, datasetID, transactionsTable, datasetID, ingestRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(startDate)},
		{Name: "end_date", Value: civil.DateOf(endDate)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

// SummaryByKind aggregates transaction counts, amounts and fees per kind over
// the given date range.
func SummaryByKind(ctx context.Context, startDate, endDate time.Time) ([]*KindSummary, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("SummaryByKind: bigquery client: %w", err)
	}
	defer client.Close()

	return SummaryByKindWithClient(ctx, client, startDate, endDate)
}

// SummaryByKindWithClient aggregates transaction counts, amounts and fees per
// kind over the given date range, largest count first.
func SummaryByKindWithClient(ctx context.Context, client *bigquery.Client, startDate, endDate time.Time) ([]*KindSummary, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.kind,
			COUNT(*) AS n,
			SUM(t.amount) AS total_amount,
			SUM(t.fee) AS total_fees
		FROM %s.%s t
		INNER JOIN %s.%s ir
		  ON t.ingest_run_id = ir.ingest_run_id
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		  AND ir.status = 'SUCCESS'
		GROUP BY t.kind
		ORDER BY n DESC
	`, datasetID, transactionsTable, datasetID, ingestRunsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(startDate)},
		{Name: "end_date", Value: civil.DateOf(endDate)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("SummaryByKind: query read: %w", err)
	}

	var rows []*KindSummary
	for {
		var r KindSummary
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("SummaryByKind: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
