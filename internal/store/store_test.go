package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRunStatusValues(t *testing.T) {
	if string(StatusCompleted) != "completed" {
		t.Errorf("expected completed, got %s", StatusCompleted)
	}
	if string(StatusFailed) != "failed" {
		t.Errorf("expected failed, got %s", StatusFailed)
	}
}

func TestRunFilterDefaults(t *testing.T) {
	f := RunFilter{}
	if f.limit() != defaultListLimit {
		t.Errorf("expected default limit %d, got %d", defaultListLimit, f.limit())
	}
	if (RunFilter{Limit: 5}).limit() != 5 {
		t.Error("expected explicit limit to be kept")
	}
}

func TestPrepareFillsDefaults(t *testing.T) {
	run := &Run{}
	prepare(run)
	if run.ID == uuid.Nil {
		t.Error("expected generated ID")
	}
	if run.Status != StatusCompleted {
		t.Errorf("expected completed status, got %s", run.Status)
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected creation time")
	}

	id := uuid.New()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	run = &Run{ID: id, CreatedAt: at, Status: StatusFailed}
	prepare(run)
	if run.ID != id || !run.CreatedAt.Equal(at) || run.Status != StatusFailed {
		t.Errorf("prepare overwrote explicit fields: %+v", run)
	}
}
