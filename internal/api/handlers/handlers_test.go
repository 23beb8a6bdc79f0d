package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	infra "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/ingest"
	"github.com/niyonkuru/momo-tracker/internal/jobs"
	"github.com/niyonkuru/momo-tracker/internal/jobs/inmemory"
)

type stubRepo struct {
	exports      []*infra.ExportRow
	transactions []*infra.TransactionRow
}

func (s *stubRepo) InsertExport(ctx context.Context, row *infra.ExportRow) error {
	s.exports = append(s.exports, row)
	return nil
}

func (s *stubRepo) MarkExportProcessed(ctx context.Context, exportID, status string, messageCount int64) error {
	return nil
}

func (s *stubRepo) FindExportByChecksum(ctx context.Context, checksum string) (*infra.ExportRow, error) {
	return nil, nil
}

func (s *stubRepo) ListAllExports(ctx context.Context) ([]*infra.ExportRow, error) {
	return s.exports, nil
}

func (s *stubRepo) StartIngestRun(ctx context.Context, exportID string) (string, error) {
	return "run-1", nil
}

func (s *stubRepo) MarkIngestRunFailed(ctx context.Context, ingestRunID string, runErr error) {}

func (s *stubRepo) MarkIngestRunSucceeded(ctx context.Context, ingestRunID string, counts infra.RunCounts) error {
	return nil
}

func (s *stubRepo) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	s.transactions = append(s.transactions, rows...)
	return nil
}

func (s *stubRepo) InsertProcessingLog(ctx context.Context, rows []*infra.ProcessingLogRow) error {
	return nil
}

func (s *stubRepo) ListProcessingLogByRun(ctx context.Context, ingestRunID string) ([]*infra.ProcessingLogRow, error) {
	return nil, nil
}

func (s *stubRepo) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*infra.TransactionRow, error) {
	return s.transactions, nil
}

func (s *stubRepo) SummaryByKind(ctx context.Context, startDate, endDate time.Time) ([]*infra.KindSummary, error) {
	return nil, nil
}

type stubStorage struct {
	uploaded map[string][]byte
}

func (s *stubStorage) Upload(ctx context.Context, bucket, object, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if s.uploaded == nil {
		s.uploaded = make(map[string][]byte)
	}
	s.uploaded[object] = data
	return int64(len(data)), nil
}

func (s *stubStorage) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	return nil, nil
}

func newExportsHandler(repo *stubRepo, storage *stubStorage, pub jobs.Publisher) *ExportsHandler {
	svc := ingest.NewService(repo, storage)
	return NewExportsHandler(repo, svc, storage, pub, "momo-exports", zerolog.Nop())
}

func TestUploadExport(t *testing.T) {
	repo := &stubRepo{}
	storage := &stubStorage{}
	h := newExportsHandler(repo, storage, nil)

	body := `<smses count="0"></smses>`
	req := httptest.NewRequest(http.MethodPost, "/api/exports?filename=backup.xml", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.UploadExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["export_id"] == "" {
		t.Error("missing export_id")
	}
	if !strings.HasPrefix(resp["gcs_uri"], "gs://momo-exports/exports/") {
		t.Errorf("gcs_uri = %q", resp["gcs_uri"])
	}

	if len(storage.uploaded) != 1 {
		t.Fatalf("uploaded %d objects, want 1", len(storage.uploaded))
	}
	if len(repo.exports) != 1 {
		t.Fatalf("inserted %d export rows, want 1", len(repo.exports))
	}
	if repo.exports[0].OriginalFilename != "backup.xml" {
		t.Errorf("filename = %q", repo.exports[0].OriginalFilename)
	}
}

func TestUploadExportEmptyBody(t *testing.T) {
	h := newExportsHandler(&stubRepo{}, &stubStorage{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(""))
	rec := httptest.NewRecorder()

	h.UploadExport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEnqueueIngest(t *testing.T) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(4, 1, store)
	defer queue.Close()

	h := newExportsHandler(&stubRepo{}, &stubStorage{}, queue)

	body := `{"export_id":"exp-1","gcs_uri":"gs://momo-exports/sms.xml"}`
	req := httptest.NewRequest(http.MethodPost, "/api/exports/ingest", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.EnqueueIngest(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Error("missing job_id")
	}

	saved, err := store.ListJobs(context.Background(), jobs.JobFilter{ExportID: "exp-1"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("stored %d jobs, want 1", len(saved))
	}
}

func TestEnqueueIngestMissingFields(t *testing.T) {
	h := newExportsHandler(&stubRepo{}, &stubStorage{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/exports/ingest", strings.NewReader(`{"export_id":""}`))
	rec := httptest.NewRecorder()

	h.EnqueueIngest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListTransactionsInvalidDate(t *testing.T) {
	h := NewTransactionsHandler(&stubRepo{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?start_date=01-01-2024", nil)
	rec := httptest.NewRecorder()

	h.ListTransactions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListTransactionsEmptyIsArray(t *testing.T) {
	h := NewTransactionsHandler(&stubRepo{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}
