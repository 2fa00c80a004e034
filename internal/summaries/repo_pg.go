package summaries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const runColumns = `
id, user_id, independent_id, pairwise_id, counterfactual_id, workbook_id,
resamples, seed, exclude_rater_type, source_1, source_2,
status, result, error_code, error_message, error_retryable,
started_at, completed_at, created_at`

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO summary_runs (
    id,
    user_id,
    independent_id,
    pairwise_id,
    counterfactual_id,
    workbook_id,
    resamples,
    seed,
    exclude_rater_type,
    source_1,
    source_2,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		run.ID,
		run.UserID,
		nullString(run.IndependentID),
		nullString(run.PairwiseID),
		nullString(run.CounterfactualID),
		nullString(run.WorkbookID),
		run.Resamples,
		run.Seed,
		nullString(run.ExcludeRaterType),
		run.Source1,
		run.Source2,
		run.Status,
		run.CreatedAt,
	)
	return err
}

// GetByID fetches a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM summary_runs WHERE id = $1 LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

// ListByUser lists runs ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + runColumns + `
FROM summary_runs
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// CountByUser returns the number of runs a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userId string) (int, error) {
	const query = `SELECT COUNT(*) FROM summary_runs WHERE user_id = $1`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, userId).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus sets the status and optionally the started timestamp.
func (r *PGRepo) UpdateStatus(ctx context.Context, runID, status string, startedAt *time.Time) error {
	const query = `
UPDATE summary_runs
SET status = $1,
    started_at = COALESCE($2, started_at),
    updated_at = NOW()
WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, startedAt, runID)
	return err
}

// UpdateResult stores the result JSON and marks the run completed.
func (r *PGRepo) UpdateResult(ctx context.Context, runID string, result *Result, completedAt *time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	const query = `
UPDATE summary_runs
SET status = $1,
    result = $2::jsonb,
    error_code = NULL,
    error_message = NULL,
    error_retryable = NULL,
    completed_at = $3,
    updated_at = NOW()
WHERE id = $4`
	_, err = r.DB.ExecContext(ctx, query, StatusCompleted, string(payload), completedAt, runID)
	return err
}

// UpdateError marks the run failed with error details.
func (r *PGRepo) UpdateError(ctx context.Context, runID, code, message string, retryable bool, completedAt *time.Time) error {
	const query = `
UPDATE summary_runs
SET status = $1,
    error_code = $2,
    error_message = $3,
    error_retryable = $4,
    completed_at = $5,
    updated_at = NOW()
WHERE id = $6`
	_, err := r.DB.ExecContext(ctx, query, StatusFailed, code, message, retryable, completedAt, runID)
	return err
}

// ClaimGuest reassigns runs owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE summary_runs SET user_id = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

// DeleteByUser removes all runs owned by a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	const query = `DELETE FROM summary_runs WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userId)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var independentID, pairwiseID, counterfactualID, workbookID sql.NullString
	var excludeRaterType sql.NullString
	var result sql.NullString
	var errorCode, errorMessage sql.NullString
	var errorRetryable sql.NullBool
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.UserID,
		&independentID,
		&pairwiseID,
		&counterfactualID,
		&workbookID,
		&run.Resamples,
		&run.Seed,
		&excludeRaterType,
		&run.Source1,
		&run.Source2,
		&run.Status,
		&result,
		&errorCode,
		&errorMessage,
		&errorRetryable,
		&startedAt,
		&completedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return Run{}, err
	}

	run.IndependentID = independentID.String
	run.PairwiseID = pairwiseID.String
	run.CounterfactualID = counterfactualID.String
	run.WorkbookID = workbookID.String
	run.ExcludeRaterType = excludeRaterType.String
	if errorCode.Valid {
		run.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if errorRetryable.Valid {
		run.ErrorRetryable = errorRetryable.Bool
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if result.Valid && result.String != "" && result.String != "null" {
		var parsed Result
		if err := json.Unmarshal([]byte(result.String), &parsed); err != nil {
			return Run{}, fmt.Errorf("unmarshal result: %w", err)
		}
		run.Result = &parsed
	}
	return run, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
