package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/niyonkuru/momo-tracker/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := &jobs.IngestExportJob{
		JobID:    "job-1",
		ExportID: "exp-1",
		GCSURI:   "gs://bucket/exports/sms.xml",
		Status:   jobs.JobStatusPending,
	}

	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.ExportID != "exp-1" || got.Status != jobs.JobStatusPending {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not affect the stored job.
	got.Status = jobs.JobStatusFailed
	again, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through returned copy: %v", again.Status)
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.IngestExportJob{}); err == nil {
		t.Fatal("expected error for job without ID")
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestStoreListJobsFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []*jobs.IngestExportJob{
		{JobID: "a", ExportID: "exp-1", Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "b", ExportID: "exp-1", Status: jobs.JobStatusFailed, CreatedAt: base.Add(time.Minute)},
		{JobID: "c", ExportID: "exp-2", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s): %v", j.JobID, err)
		}
	}

	byExport, err := store.ListJobs(ctx, jobs.JobFilter{ExportID: "exp-1"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byExport) != 2 {
		t.Fatalf("ListJobs by export = %d jobs, want 2", len(byExport))
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byStatus) != 2 {
		t.Fatalf("ListJobs by status = %d jobs, want 2", len(byStatus))
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListJobs = %d jobs, want 3", len(all))
	}
	// Newest first.
	if all[0].JobID != "c" || all[2].JobID != "a" {
		t.Errorf("ListJobs order = %s..%s, want c..a", all[0].JobID, all[2].JobID)
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "b" {
		t.Errorf("ListJobs limit/offset = %+v, want [b]", limited)
	}
}

func TestQueueProcessesJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(4, 1, store)
	defer queue.Close()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.IngestExportJob{ExportID: "exp-1", GCSURI: "gs://b/o.xml"}
	if err := queue.PublishIngestExport(ctx, job); err != nil {
		t.Fatalf("PublishIngestExport: %v", err)
	}

	select {
	case id := <-done:
		if id != job.JobID {
			t.Errorf("handled job %q, want %q", id, job.JobID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	// The store eventually reflects completion.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never marked completed: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueuePublishAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, NewStore())
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := queue.PublishIngestExport(context.Background(), &jobs.IngestExportJob{ExportID: "exp-1"})
	if err == nil {
		t.Fatal("expected error publishing to closed queue")
	}
}
