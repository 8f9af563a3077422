package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteCreateAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	stability := 0.75
	run := &Run{
		Name:                "supplier selection",
		Alternatives:        3,
		Criteria:            4,
		Experts:             2,
		TopAlternative:      "acme",
		ConsistencyWarnings: 1,
		StabilityIndex:      &stability,
		DurationMs:          12,
		Problem:             json.RawMessage(`{"name":"supplier selection"}`),
		Result:              json.RawMessage(`{"ranking":[1,2,3]}`),
	}
	require.NoError(t, s.CreateRun(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "supplier selection", got.Name)
	assert.Equal(t, "acme", got.TopAlternative)
	assert.Equal(t, 1, got.ConsistencyWarnings)
	require.NotNil(t, got.StabilityIndex)
	assert.InDelta(t, 0.75, *got.StabilityIndex, 1e-12)
	assert.JSONEq(t, `{"ranking":[1,2,3]}`, string(got.Result))
	assert.JSONEq(t, `{"name":"supplier selection"}`, string(got.Problem))
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Microsecond)
}

func TestSQLiteGetMissingRun(t *testing.T) {
	s := newTestSQLite(t)
	got, err := s.GetRun(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "a"} {
		require.NoError(t, s.CreateRun(ctx, &Run{
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Result:    json.RawMessage(`{}`),
		}))
	}
	failed := StatusFailed
	require.NoError(t, s.CreateRun(ctx, &Run{Name: "c", Status: StatusFailed, Error: "degenerate", CreatedAt: base.Add(time.Hour)}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "c", all[0].Name, "newest first")
	for _, r := range all {
		assert.Nil(t, r.Result, "listing omits payloads")
	}

	named, err := s.ListRuns(ctx, RunFilter{Name: "a"})
	require.NoError(t, err)
	assert.Len(t, named, 2)

	onlyFailed, err := s.ListRuns(ctx, RunFilter{Status: &failed})
	require.NoError(t, err)
	require.Len(t, onlyFailed, 1)
	assert.Equal(t, "degenerate", onlyFailed[0].Error)

	page, err := s.ListRuns(ctx, RunFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].Name)
	assert.Equal(t, "b", page[1].Name)
}

func TestSQLiteDeleteRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := &Run{Name: "to delete"}
	require.NoError(t, s.CreateRun(ctx, run))
	require.NoError(t, s.DeleteRun(ctx, run.ID))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
