package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestJob_FailReleasesUpload(t *testing.T) {
	job := &Job{ID: "fail-test"}
	job.SetFileData([]byte("%PDF"))
	job.Fail("opening", "open: broken")

	if job.FileData() != nil {
		t.Error("expected upload bytes to be released")
	}
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "opening" {
		t.Errorf("status=%q phase=%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "open: broken" {
		t.Errorf("errors = %v", snap.Progress.Errors)
	}
}

func TestWorker_FailedOpenReleasesUpload(t *testing.T) {
	w := NewWorker(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, false, 1)
	job := &Job{ID: "bad-upload", Filename: "broken.json"}
	job.SetFileData([]byte("{not json"))

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Fatalf("status = %q", job.Snapshot().Status)
	}
	if job.FileData() != nil {
		t.Error("failed job kept its upload in memory")
	}
	if job.Result() != nil {
		t.Error("failed job should have no result")
	}
}
