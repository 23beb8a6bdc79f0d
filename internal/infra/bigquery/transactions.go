package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/niyonkuru/momo-tracker/internal/engine"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	ExportID      string `bigquery:"export_id"`      // NULLABLE
	IngestRunID   string `bigquery:"ingest_run_id"`  // NULLABLE

	Kind string `bigquery:"kind"` // REQUIRED

	Amount  int64              `bigquery:"amount"`  // REQUIRED, whole RWF
	Fee     int64              `bigquery:"fee"`     // NULLABLE
	Balance bigquery.NullInt64 `bigquery:"balance"` // NULLABLE

	Counterparty string `bigquery:"counterparty"` // NULLABLE

	OccurredTS      time.Time  `bigquery:"occurred_ts"`      // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED, partition column

	RawMessage string `bigquery:"raw_message"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// TransactionRowFromRecord maps an extracted record onto the momo.transactions
// schema, stamping it with the export and ingest run it came from.
func TransactionRowFromRecord(rec engine.Record, exportID, ingestRunID string) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   rec.ID,
		ExportID:        exportID,
		IngestRunID:     ingestRunID,
		Kind:            string(rec.Kind),
		Amount:          rec.Amount,
		Fee:             rec.Fee,
		Counterparty:    rec.Counterparty,
		OccurredTS:      rec.OccurredAt,
		TransactionDate: civil.DateOf(rec.OccurredAt),
		RawMessage:      rec.Raw,
		CreatedTS:       time.Now(),
	}
	if rec.Balance != nil {
		row.Balance = bigquery.NullInt64{Int64: *rec.Balance, Valid: true}
	}
	return row
}
