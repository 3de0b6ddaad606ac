// Package storage persists explorer run summaries and traces to SQLite for
// offline inspection by cmd/explore-demo. It is ambient, optional
// infrastructure grounded on the teacher's internal/storage.SQLiteStore: it
// is never imported by configuration, explorer, or trace, which remain
// pure and side-effect free.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrNotFound is returned when a lookup finds no matching record.
var ErrNotFound = errors.New("not found")

// RunRecord summarizes one completed explorer run.
type RunRecord struct {
	ID           string
	Algorithm    string
	DepthLimit   int
	VisitedCount int
	MatchCount   int
	CreatedAt    time.Time
}

// TraceStepRecord is one configuration along a persisted trace.
type TraceStepRecord struct {
	RunID        string
	StepIndex    int
	Fingerprint  string
	ReachedStart bool
	CreatedAt    time.Time
}

// Recorder is a SQLite-backed store for run and trace records.
type Recorder struct {
	db *sql.DB
}

// Open creates (if needed) and migrates the SQLite database at path.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	r := &Recorder{db: db}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying database handle.
func (r *Recorder) Close() error { return r.db.Close() }

func (r *Recorder) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version TEXT PRIMARY KEY);`); err != nil {
		return err
	}
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	for _, e := range entries {
		version := e.Name()
		var exists string
		err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = ?", version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return err
		}
		body, err := migrationFS.ReadFile("migrations/" + version)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, string(body)); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, "INSERT INTO schema_migrations(version) VALUES(?)", version); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun persists a run summary.
func (r *Recorder) SaveRun(ctx context.Context, rec RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs(id,algorithm,depth_limit,visited_count,match_count,created_at) VALUES(?,?,?,?,?,?)",
		rec.ID, rec.Algorithm, rec.DepthLimit, rec.VisitedCount, rec.MatchCount, rec.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetRun retrieves a run summary by ID.
func (r *Recorder) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var rec RunRecord
	var created string
	err := r.db.QueryRowContext(ctx,
		"SELECT id,algorithm,depth_limit,visited_count,match_count,created_at FROM runs WHERE id=?", id,
	).Scan(&rec.ID, &rec.Algorithm, &rec.DepthLimit, &rec.VisitedCount, &rec.MatchCount, &created)
	if err == sql.ErrNoRows {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return rec, nil
}

// SaveTrace persists every step of a trace, in the order given.
func (r *Recorder) SaveTrace(ctx context.Context, steps []TraceStepRecord) error {
	for _, step := range steps {
		reached := 0
		if step.ReachedStart {
			reached = 1
		}
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO trace_steps(run_id,step_index,fingerprint,reached_start,created_at) VALUES(?,?,?,?,?)",
			step.RunID, step.StepIndex, step.Fingerprint, reached, step.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}
	return nil
}

// ListTrace retrieves every persisted step for a run, ordered by step index.
func (r *Recorder) ListTrace(ctx context.Context, runID string) ([]TraceStepRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT run_id,step_index,fingerprint,reached_start,created_at FROM trace_steps WHERE run_id=? ORDER BY step_index ASC", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TraceStepRecord
	for rows.Next() {
		var step TraceStepRecord
		var reached int
		var created string
		if err := rows.Scan(&step.RunID, &step.StepIndex, &step.Fingerprint, &reached, &created); err != nil {
			return nil, err
		}
		step.ReachedStart = reached != 0
		step.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, step)
	}
	return out, rows.Err()
}
