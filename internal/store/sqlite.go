package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout keeps fixed-width fractions so timestamps stay sortable in TEXT columns.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps runs in a local database file. It backs the CLI
// archive and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id               TEXT    PRIMARY KEY,
			name                 TEXT    NOT NULL DEFAULT '',
			status               TEXT    NOT NULL,
			created_at           TEXT    NOT NULL,
			alternatives         INTEGER NOT NULL DEFAULT 0,
			criteria             INTEGER NOT NULL DEFAULT 0,
			experts              INTEGER NOT NULL DEFAULT 0,
			top_alternative      TEXT    NOT NULL DEFAULT '',
			consistency_warnings INTEGER NOT NULL DEFAULT 0,
			stability_index      REAL,
			duration_ms          INTEGER NOT NULL DEFAULT 0,
			error                TEXT    NOT NULL DEFAULT '',
			problem              TEXT,
			result               TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at DESC);`)
	return err
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	prepare(run)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Name, string(run.Status), run.CreatedAt.UTC().Format(timeLayout),
		run.Alternatives, run.Criteria, run.Experts, run.TopAlternative, run.ConsistencyWarnings,
		run.StabilityIndex, run.DurationMs, run.Error, nullJSON(run.Problem), nullJSON(run.Result),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id.String())
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT run_id, name, status, created_at,
		alternatives, criteria, experts, top_alternative, consistency_warnings,
		stability_index, duration_ms, error, NULL, NULL
		FROM runs WHERE 1=1`
	args := []interface{}{}

	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.limit(), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id.String())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row scanner) (*Run, error) {
	r := &Run{}
	var id, status, created string
	var stability sql.NullFloat64
	var problem, result sql.NullString
	err := row.Scan(
		&id, &r.Name, &status, &created,
		&r.Alternatives, &r.Criteria, &r.Experts, &r.TopAlternative, &r.ConsistencyWarnings,
		&stability, &r.DurationMs, &r.Error, &problem, &result,
	)
	if err != nil {
		return nil, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run id %q: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("run %s created_at: %w", id, err)
	}
	r.Status = RunStatus(status)
	if stability.Valid {
		v := stability.Float64
		r.StabilityIndex = &v
	}
	if problem.Valid {
		r.Problem = []byte(problem.String)
	}
	if result.Valid {
		r.Result = []byte(result.String)
	}
	return r, nil
}
