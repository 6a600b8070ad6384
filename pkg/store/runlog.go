package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordRun appends one phase execution to the run log. Run records are
// written even for dry runs; they are the audit trail of what was attempted.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	dryRun := 0
	if rec.DryRun {
		dryRun = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_log (run_id, phase, started_at, finished_at, dry_run, status, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Phase,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		dryRun,
		rec.Status,
		nullableString(rec.Detail),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Runs returns the most recent run log entries, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, phase, started_at, finished_at, dry_run, status, detail
		 FROM run_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run log: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec         RunRecord
			startedRaw  string
			finishedRaw string
			dryRun      int
			detail      sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &rec.Phase, &startedRaw, &finishedRaw, &dryRun, &rec.Status, &detail); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedRaw)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedRaw)
		rec.DryRun = dryRun != 0
		rec.Detail = detail.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
