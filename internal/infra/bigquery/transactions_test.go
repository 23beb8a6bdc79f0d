package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/niyonkuru/momo-tracker/internal/engine"
)

func TestTransactionRowFromRecord(t *testing.T) {
	occurred := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	balance := int64(25000)

	rec := engine.Record{
		ID:           "123456",
		Kind:         engine.KindIncomingTransfer,
		Amount:       5000,
		OccurredAt:   occurred,
		Counterparty: "John Doe",
		Fee:          100,
		Balance:      &balance,
		Raw:          "You have received 5000 RWF from John Doe",
	}

	row := TransactionRowFromRecord(rec, "exp-1", "run-1")

	if row.TransactionID != "123456" {
		t.Errorf("TransactionID = %q, want %q", row.TransactionID, "123456")
	}
	if row.ExportID != "exp-1" || row.IngestRunID != "run-1" {
		t.Errorf("provenance = (%q, %q), want (exp-1, run-1)", row.ExportID, row.IngestRunID)
	}
	if row.Kind != "incoming_transfer" {
		t.Errorf("Kind = %q, want incoming_transfer", row.Kind)
	}
	if row.Amount != 5000 || row.Fee != 100 {
		t.Errorf("Amount/Fee = %d/%d, want 5000/100", row.Amount, row.Fee)
	}
	if !row.Balance.Valid || row.Balance.Int64 != 25000 {
		t.Errorf("Balance = %+v, want valid 25000", row.Balance)
	}
	if !row.OccurredTS.Equal(occurred) {
		t.Errorf("OccurredTS = %v, want %v", row.OccurredTS, occurred)
	}
	if got, want := row.TransactionDate, civil.DateOf(occurred); got != want {
		t.Errorf("TransactionDate = %v, want %v", got, want)
	}
	if row.CreatedTS.IsZero() {
		t.Error("CreatedTS should be set")
	}
}

func TestTransactionRowFromRecordNilBalance(t *testing.T) {
	rec := engine.Record{
		ID:         "TXDEADBEEF00112233",
		Kind:       engine.KindAirtimePurchase,
		Amount:     2000,
		OccurredAt: time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC),
	}

	row := TransactionRowFromRecord(rec, "exp-2", "run-2")

	if row.Balance.Valid {
		t.Errorf("Balance = %+v, want invalid", row.Balance)
	}
}
