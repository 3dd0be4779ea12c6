package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cafesync/internal/reconcile"
)

// Run é uma linha de sync_runs.
type Run struct {
	ID         string
	Flow       string
	StartedAt  time.Time
	DurationMs int64
	Counts     map[string]int
}

// RunRepository keeps the history of sync runs in Postgres.
type RunRepository struct {
	DB *sql.DB
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sync_runs (
			id          uuid PRIMARY KEY,
			flow        text NOT NULL,
			started_at  timestamptz NOT NULL,
			duration_ms bigint NOT NULL,
			counts      jsonb NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_runs: %w", err)
	}
	return nil
}

// Record implements reconcile.Recorder.
func (r *RunRepository) Record(ctx context.Context, rep reconcile.Report) error {
	run := RunFromReport(rep)
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO sync_runs (id, flow, started_at, duration_ms, counts)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Flow, run.StartedAt, run.DurationMs, string(counts))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.Flow, err)
	}
	return nil
}

// List returns the latest runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, flow, started_at, duration_ms, counts
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Run
	for rows.Next() {
		var run Run
		var counts []byte
		if err := rows.Scan(&run.ID, &run.Flow, &run.StartedAt, &run.DurationMs, &counts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(counts, &run.Counts); err != nil {
			return nil, fmt.Errorf("failed to decode counts of run %s: %w", run.ID, err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

// RunFromReport keeps only the non-zero counts of a report.
func RunFromReport(rep reconcile.Report) Run {
	counts := make(map[string]int)
	for k, v := range rep.Counts() {
		if v != 0 {
			counts[k] = v
		}
	}
	return Run{
		ID:         uuid.New().String(),
		Flow:       rep.Flow,
		StartedAt:  rep.StartedAt,
		DurationMs: rep.Elapsed.Milliseconds(),
		Counts:     counts,
	}
}
