package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// ExportRepository is the persistence surface the ingest pipeline and the API
// handlers depend on. Concrete implementations hold their own client; tests
// substitute mocks.
type ExportRepository interface {
	InsertExport(ctx context.Context, row *ExportRow) error
	MarkExportProcessed(ctx context.Context, exportID, status string, messageCount int64) error
	FindExportByChecksum(ctx context.Context, checksum string) (*ExportRow, error)
	ListAllExports(ctx context.Context) ([]*ExportRow, error)

	StartIngestRun(ctx context.Context, exportID string) (string, error)
	MarkIngestRunFailed(ctx context.Context, ingestRunID string, runErr error)
	MarkIngestRunSucceeded(ctx context.Context, ingestRunID string, counts RunCounts) error

	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	InsertProcessingLog(ctx context.Context, rows []*ProcessingLogRow) error
	ListProcessingLogByRun(ctx context.Context, ingestRunID string) ([]*ProcessingLogRow, error)

	QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error)
	SummaryByKind(ctx context.Context, startDate, endDate time.Time) ([]*KindSummary, error)
}

// BigQueryExportRepository is the concrete implementation of ExportRepository.
// It holds a shared BigQuery client to avoid creating a new connection for
// each operation.
type BigQueryExportRepository struct {
	client *bigquery.Client
}

// NewBigQueryExportRepository creates a new instance of BigQueryExportRepository
// with a shared BigQuery client.
func NewBigQueryExportRepository(ctx context.Context) (*BigQueryExportRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryExportRepository: creating client: %w", err)
	}
	return &BigQueryExportRepository{
		client: client,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *BigQueryExportRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertExport delegates to the existing InsertExport function with the shared client.
func (r *BigQueryExportRepository) InsertExport(ctx context.Context, row *ExportRow) error {
	return InsertExportWithClient(ctx, r.client, row)
}

// MarkExportProcessed delegates to the existing MarkExportProcessed function with the shared client.
func (r *BigQueryExportRepository) MarkExportProcessed(ctx context.Context, exportID, status string, messageCount int64) error {
	return MarkExportProcessedWithClient(ctx, r.client, exportID, status, messageCount)
}

// FindExportByChecksum delegates to the existing FindExportByChecksum function with the shared client.
func (r *BigQueryExportRepository) FindExportByChecksum(ctx context.Context, checksum string) (*ExportRow, error) {
	return FindExportByChecksumWithClient(ctx, r.client, checksum)
}

// ListAllExports delegates to the existing ListAllExports function with the shared client.
func (r *BigQueryExportRepository) ListAllExports(ctx context.Context) ([]*ExportRow, error) {
	return ListAllExportsWithClient(ctx, r.client)
}

// StartIngestRun delegates to the existing StartIngestRun function with the shared client.
func (r *BigQueryExportRepository) StartIngestRun(ctx context.Context, exportID string) (string, error) {
	return StartIngestRunWithClient(ctx, r.client, exportID)
}

// MarkIngestRunFailed delegates to the existing MarkIngestRunFailed function with the shared client.
func (r *BigQueryExportRepository) MarkIngestRunFailed(ctx context.Context, ingestRunID string, runErr error) {
	MarkIngestRunFailedWithClient(ctx, r.client, ingestRunID, runErr)
}

// MarkIngestRunSucceeded delegates to the existing MarkIngestRunSucceeded function with the shared client.
func (r *BigQueryExportRepository) MarkIngestRunSucceeded(ctx context.Context, ingestRunID string, counts RunCounts) error {
	return MarkIngestRunSucceededWithClient(ctx, r.client, ingestRunID, counts)
}

// InsertTransactions delegates to the existing InsertTransactions function with the shared client.
func (r *BigQueryExportRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertTransactionsWithClient(ctx, r.client, rows)
}

// InsertProcessingLog delegates to the existing InsertProcessingLog function with the shared client.
func (r *BigQueryExportRepository) InsertProcessingLog(ctx context.Context, rows []*ProcessingLogRow) error {
	return InsertProcessingLogWithClient(ctx, r.client, rows)
}

// ListProcessingLogByRun delegates to the existing ListProcessingLogByRun function with the shared client.
func (r *BigQueryExportRepository) ListProcessingLogByRun(ctx context.Context, ingestRunID string) ([]*ProcessingLogRow, error) {
	return ListProcessingLogByRunWithClient(ctx, r.client, ingestRunID)
}

// QueryTransactionsByDateRange delegates to the existing QueryTransactionsByDateRange function with the shared client.
func (r *BigQueryExportRepository) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, startDate, endDate)
}

// SummaryByKind delegates to the existing SummaryByKind function with the shared client.
func (r *BigQueryExportRepository) SummaryByKind(ctx context.Context, startDate, endDate time.Time) ([]*KindSummary, error) {
	return SummaryByKindWithClient(ctx, r.client, startDate, endDate)
}
