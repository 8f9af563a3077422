package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the runs table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fuzzyrank_runs (
			run_id               UUID PRIMARY KEY,
			name                 TEXT        NOT NULL DEFAULT '',
			status               TEXT        NOT NULL,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
			alternatives         INTEGER     NOT NULL DEFAULT 0,
			criteria             INTEGER     NOT NULL DEFAULT 0,
			experts              INTEGER     NOT NULL DEFAULT 0,
			top_alternative      TEXT        NOT NULL DEFAULT '',
			consistency_warnings INTEGER     NOT NULL DEFAULT 0,
			stability_index      DOUBLE PRECISION,
			duration_ms          BIGINT      NOT NULL DEFAULT 0,
			error                TEXT        NOT NULL DEFAULT '',
			problem              JSONB,
			result               JSONB
		);
		CREATE INDEX IF NOT EXISTS fuzzyrank_runs_created_at_idx ON fuzzyrank_runs (created_at DESC);`)
	return err
}

const runColumns = `run_id, name, status, created_at,
	alternatives, criteria, experts, top_alternative, consistency_warnings,
	stability_index, duration_ms, error, problem, result`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	prepare(run)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fuzzyrank_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.Name, string(run.Status), run.CreatedAt,
		run.Alternatives, run.Criteria, run.Experts, run.TopAlternative, run.ConsistencyWarnings,
		run.StabilityIndex, run.DurationMs, run.Error, nullJSON(run.Problem), nullJSON(run.Result),
	)
	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM fuzzyrank_runs WHERE run_id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	// Listing skips the payload columns.
	query := `SELECT run_id, name, status, created_at,
		alternatives, criteria, experts, top_alternative, consistency_warnings,
		stability_index, duration_ms, error, NULL::jsonb, NULL::jsonb
		FROM fuzzyrank_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Name != "" {
		n++
		query += fmt.Sprintf(" AND name = $%d", n)
		args = append(args, filter.Name)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}

	query += " ORDER BY created_at DESC"

	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM fuzzyrank_runs WHERE run_id = $1`, id)
	return err
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	var status string
	var problem, result []byte
	err := row.Scan(
		&r.ID, &r.Name, &status, &r.CreatedAt,
		&r.Alternatives, &r.Criteria, &r.Experts, &r.TopAlternative, &r.ConsistencyWarnings,
		&r.StabilityIndex, &r.DurationMs, &r.Error, &problem, &result,
	)
	if err != nil {
		return nil, err
	}
	r.Status = RunStatus(status)
	r.Problem = problem
	r.Result = result
	return r, nil
}

func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
