//go:build integration

package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE fuzzyrank_runs")
		s.Close()
	})

	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	stability := 0.5
	run := &Run{
		Name:           "integration",
		Alternatives:   3,
		Criteria:       2,
		Experts:        1,
		TopAlternative: "alpha",
		StabilityIndex: &stability,
		Problem:        json.RawMessage(`{"name":"integration"}`),
		Result:         json.RawMessage(`{"order":[0,1,2]}`),
	}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Fatal("expected run ID after create")
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.TopAlternative != "alpha" {
		t.Errorf("expected top alternative alpha, got %s", got.TopAlternative)
	}
	if got.StabilityIndex == nil || *got.StabilityIndex != 0.5 {
		t.Errorf("expected stability index 0.5, got %v", got.StabilityIndex)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(got.Result, &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := setupTestDB(t)
	got, err := s.GetRun(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestListAndDeleteRuns(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "one"} {
		if err := s.CreateRun(ctx, &Run{Name: name}); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, RunFilter{Name: "one"})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	if err := s.DeleteRun(ctx, runs[0].ID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	runs, err = s.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs after delete, got %d", len(runs))
	}
}
