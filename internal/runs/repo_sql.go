package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-screener/internal/shared/storage/db"
)

// SQLRepo implements Repo on Postgres or SQLite.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

// Create inserts a new run.
func (r *SQLRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO screening_runs (
    id,
    client_id,
    industry,
    job_description,
    options,
    results,
    stats,
    files,
    duration_ms,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	options, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	results, err := marshalList(run.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	files, err := marshalList(run.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		r.Dialect.Rebind(query),
		run.ID,
		run.ClientID,
		run.Industry,
		run.JobDescription,
		string(options),
		results,
		string(stats),
		files,
		run.DurationMs,
		r.Dialect.TimeArg(run.CreatedAt),
	)
	return err
}

// Get returns a run owned by clientID.
func (r *SQLRepo) Get(ctx context.Context, clientID, id string) (Run, error) {
	const query = `
SELECT id, client_id, industry, job_description, options, results, stats, files, duration_ms, created_at
FROM screening_runs
WHERE client_id = $1 AND id = $2`

	var (
		run                            Run
		options, results, stats, files []byte
		createdAt                      any
	)
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), clientID, id).Scan(
		&run.ID,
		&run.ClientID,
		&run.Industry,
		&run.JobDescription,
		&options,
		&results,
		&stats,
		&files,
		&run.DurationMs,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	if err := json.Unmarshal(results, &run.Results); err != nil {
		return Run{}, fmt.Errorf("decode results run=%s: %w", run.ID, err)
	}
	if err := decodeSummary(&run, options, stats, files, createdAt); err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListByClient lists runs newest first without their results.
func (r *SQLRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, client_id, industry, job_description, options, stats, files, duration_ms, created_at
FROM screening_runs
WHERE client_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			run                   Run
			options, stats, files []byte
			createdAt             any
		)
		if err := rows.Scan(
			&run.ID,
			&run.ClientID,
			&run.Industry,
			&run.JobDescription,
			&options,
			&stats,
			&files,
			&run.DurationMs,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if err := decodeSummary(&run, options, stats, files, createdAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Delete removes a run owned by clientID.
func (r *SQLRepo) Delete(ctx context.Context, clientID, id string) error {
	const query = `DELETE FROM screening_runs WHERE client_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), clientID, id)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeSummary(run *Run, options, stats, files []byte, createdAt any) error {
	if err := json.Unmarshal(options, &run.Options); err != nil {
		return fmt.Errorf("decode options run=%s: %w", run.ID, err)
	}
	if err := json.Unmarshal(stats, &run.Stats); err != nil {
		return fmt.Errorf("decode stats run=%s: %w", run.ID, err)
	}
	if err := json.Unmarshal(files, &run.Files); err != nil {
		return fmt.Errorf("decode files run=%s: %w", run.ID, err)
	}
	ts, err := db.ParseTime(createdAt)
	if err != nil {
		return fmt.Errorf("decode created_at run=%s: %w", run.ID, err)
	}
	run.CreatedAt = ts
	return nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	return string(raw), err
}

var _ Repo = (*SQLRepo)(nil)
