package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one archived evaluation: the submitted problem, the computed
// result and a few summary columns for listing.
type Run struct {
	ID        uuid.UUID `json:"run_id"`
	Name      string    `json:"name"`
	Status    RunStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Summary
	Alternatives        int      `json:"alternatives"`
	Criteria            int      `json:"criteria"`
	Experts             int      `json:"experts"`
	TopAlternative      string   `json:"top_alternative,omitempty"`
	ConsistencyWarnings int      `json:"consistency_warnings"`
	StabilityIndex      *float64 `json:"stability_index,omitempty"`
	DurationMs          int64    `json:"duration_ms"`
	Error               string   `json:"error,omitempty"`

	// Payload
	Problem json.RawMessage `json:"problem,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type RunFilter struct {
	Name   string
	Status *RunStatus
	Limit  int
	Offset int
}

const defaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store archives evaluation runs. Get returns nil, nil when the run does
// not exist.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error
	Close() error
}

func prepare(run *Run) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusCompleted
	}
}
