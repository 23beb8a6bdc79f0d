package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/niyonkuru/momo-tracker/internal/api/middleware"
	"github.com/niyonkuru/momo-tracker/internal/gcs"
	infra "github.com/niyonkuru/momo-tracker/internal/infra/bigquery"
	"github.com/niyonkuru/momo-tracker/internal/ingest"
	"github.com/niyonkuru/momo-tracker/internal/jobs"
)

// maxExportSize bounds an uploaded export XML. Backup apps produce files in
// the low tens of megabytes.
const maxExportSize = 64 << 20

// ExportsHandler handles export-related endpoints.
type ExportsHandler struct {
	repo      infra.ExportRepository
	svc       *ingest.Service
	storage   gcs.StorageService
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(repo infra.ExportRepository, svc *ingest.Service, storage gcs.StorageService, publisher jobs.Publisher, bucket string, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{
		repo:      repo,
		svc:       svc,
		storage:   storage,
		publisher: publisher,
		bucket:    bucket,
		log:       log,
	}
}

// ListExports handles GET /api/exports
func (h *ExportsHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exports, err := h.repo.ListAllExports(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list exports")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list exports")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"exports": exports,
		"count":   len(exports),
	})
}

// UploadExport handles POST /api/exports
// The request body is the SMS export XML. The file is stored in GCS and an
// exports row is created; ingestion is enqueued separately.
func (h *ExportsHandler) UploadExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "sms-export.xml"
	}
	if idx := strings.Index(filename, "?"); idx > 0 {
		filename = filename[:idx]
	}
	filename = filepath.Base(filename)

	data, err := io.ReadAll(io.LimitReader(r.Body, maxExportSize+1))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload body")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty request body")
		return
	}
	if len(data) > maxExportSize {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Export too large")
		return
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	objectName := fmt.Sprintf("exports/%s/%s", time.Now().Format("2006/01/02"), checksum[:12]+"-"+filename)
	gcsURI := gcs.URI(h.bucket, objectName)

	written, err := h.storage.Upload(ctx, h.bucket, objectName, "application/xml", bytes.NewReader(data))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload export to GCS")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store export")
		return
	}

	exportID, err := h.svc.RegisterExport(ctx, gcsURI, filename, checksum)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to register export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save export metadata")
		return
	}

	h.log.Info().
		Str("export_id", exportID).
		Str("gcs_uri", gcsURI).
		Int64("bytes", written).
		Msg("Export uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"export_id": exportID,
		"gcs_uri":   gcsURI,
		"status":    "uploaded",
	})
}

// EnqueueIngest handles POST /api/exports/ingest
func (h *ExportsHandler) EnqueueIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExportID string `json:"export_id"`
		GCSURI   string `json:"gcs_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ExportID == "" || req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "export_id and gcs_uri are required")
		return
	}

	ctx := r.Context()

	job := &jobs.IngestExportJob{
		ExportID: req.ExportID,
		GCSURI:   req.GCSURI,
	}

	if err := h.publisher.PublishIngestExport(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue ingest job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue ingest job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("export_id", req.ExportID).Msg("Ingest job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":    job.JobID,
		"export_id": req.ExportID,
		"status":    string(job.Status),
	})
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo infra.ExportRepository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo infra.ExportRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo: repo,
		log:  log,
	}
}

// dateRange parses start_date/end_date query parameters, defaulting to the
// last year.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	startDate := time.Now().AddDate(-1, 0, 0)
	endDate := time.Now()

	if s := query.Get("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date")
		}
		startDate = parsed
	}
	if s := query.Get("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date")
		}
		endDate = parsed
	}

	return startDate, endDate, nil
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startDate, endDate, err := dateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.repo.QueryTransactionsByDateRange(ctx, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []*infra.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// SummaryByKind handles GET /api/transactions/summary
func (h *TransactionsHandler) SummaryByKind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startDate, endDate, err := dateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.repo.SummaryByKind(ctx, startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to summarize transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to summarize transactions")
		return
	}

	if summary == nil {
		summary = []*infra.KindSummary{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"count":   len(summary),
	})
}

// RunsHandler handles ingest-run endpoints.
type RunsHandler struct {
	repo infra.ExportRepository
	log  zerolog.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo infra.ExportRepository, log zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		repo: repo,
		log:  log,
	}
}

// ListProcessingLog handles GET /api/runs/{runID}/log
// It returns the unrecognized messages recorded during one ingest run,
// bodies preserved verbatim for recognizer grammar review.
func (h *RunsHandler) ListProcessingLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := chi.URLParam(r, "runID")

	rows, err := h.repo.ListProcessingLogByRun(ctx, runID)
	if err != nil {
		h.log.Error().Err(err).Str("ingest_run_id", runID).Msg("Failed to list processing log")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list processing log")
		return
	}

	if rows == nil {
		rows = []*infra.ProcessingLogRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": rows,
		"count":   len(rows),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{jobID}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobID")

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		ExportID: query.Get("export_id"),
		Status:   jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
