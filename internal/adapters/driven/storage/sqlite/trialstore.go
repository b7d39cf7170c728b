package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
)

// trialStore implements driven.TrialStore.
type trialStore struct {
	store *Store
}

var _ driven.TrialStore = (*trialStore)(nil)

// SaveRun creates or updates a sweep run record.
func (s *trialStore) SaveRun(ctx context.Context, run *domain.SweepRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sweep_runs (id, results_dir, planned, passed, failed, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			results_dir = excluded.results_dir,
			planned = excluded.planned,
			passed = excluded.passed,
			failed = excluded.failed,
			ended_at = excluded.ended_at
	`, run.ID, run.ResultsDir, run.Planned, run.Passed, run.Failed,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		formatNullableTime(run.EndedAt))

	if err != nil {
		return fmt.Errorf("saving sweep run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *trialStore) GetRun(ctx context.Context, runID string) (*domain.SweepRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, results_dir, planned, passed, failed, started_at, ended_at
		FROM sweep_runs WHERE id = ?
	`, runID)

	return scanRun(row.Scan)
}

// ListRuns returns runs ordered most recent first, at most limit.
func (s *trialStore) ListRuns(ctx context.Context, limit int) ([]domain.SweepRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, results_dir, planned, passed, failed, started_at, ended_at
		FROM sweep_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sweep runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SweepRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sweep runs: %w", err)
	}
	return runs, nil
}

// RecordTrial persists one trial outcome.
func (s *trialStore) RecordTrial(ctx context.Context, record *domain.TrialRecord) error {
	if record == nil || record.RunID == "" {
		return domain.ErrInvalidInput
	}

	artifactsJSON, err := json.Marshal(record.Artifacts)
	if err != nil {
		return fmt.Errorf("marshalling artifacts: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO trials (run_id, ordinal, detector, variant, status, attempts, exit_code, error, artifacts, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, ordinal) DO UPDATE SET
			detector = excluded.detector,
			variant = excluded.variant,
			status = excluded.status,
			attempts = excluded.attempts,
			exit_code = excluded.exit_code,
			error = excluded.error,
			artifacts = excluded.artifacts,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`, record.RunID, record.Ordinal, string(record.Detector), string(record.Variant),
		string(record.Status), record.Attempts, record.ExitCode,
		nullString(record.Error), string(artifactsJSON),
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.EndedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("recording trial: %w", err)
	}
	return nil
}

// ListTrials returns a run's trials in sweep order.
func (s *trialStore) ListTrials(ctx context.Context, runID string) ([]domain.TrialRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, ordinal, detector, variant, status, attempts, exit_code, error, artifacts, started_at, ended_at
		FROM trials
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying trials: %w", err)
	}
	defer rows.Close()

	var trials []domain.TrialRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.TrialRecord
		var detector, variant, status, artifactsJSON, startedAt, endedAt string
		var errMsg sql.NullString

		if err := rows.Scan(&record.RunID, &record.Ordinal, &detector, &variant,
			&status, &record.Attempts, &record.ExitCode, &errMsg, &artifactsJSON,
			&startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scanning trial: %w", err)
		}

		record.Detector = domain.Detector(detector)
		record.Variant = domain.DatasetVariant(variant)
		record.Status = domain.TrialStatus(status)
		record.Error = errMsg.String
		record.StartedAt = parseTime(startedAt)
		record.EndedAt = parseTime(endedAt)

		if err := json.Unmarshal([]byte(artifactsJSON), &record.Artifacts); err != nil {
			return nil, fmt.Errorf("unmarshalling artifacts: %w", err)
		}

		trials = append(trials, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trials: %w", err)
	}
	return trials, nil
}

// ==================== Helper Functions ====================

// scanRun scans one sweep run row using the given scan function.
func scanRun(scan func(dest ...any) error) (*domain.SweepRun, error) {
	var run domain.SweepRun
	var startedAt string
	var endedAt sql.NullString

	if err := scan(&run.ID, &run.ResultsDir, &run.Planned, &run.Passed,
		&run.Failed, &startedAt, &endedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning sweep run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	if endedAt.Valid {
		run.EndedAt = parseTime(endedAt.String)
	}
	return &run, nil
}

// nullString converts empty strings to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// formatNullableTime stores zero times as NULL.
func formatNullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

// parseTime parses a stored RFC3339 timestamp, returning the zero time
// on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
