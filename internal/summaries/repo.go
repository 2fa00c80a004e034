package summaries

import (
	"context"
	"time"
)

// Repo defines persistence operations for summary runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Run, error)
	CountByUser(ctx context.Context, userId string) (int, error)
	UpdateStatus(ctx context.Context, runID, status string, startedAt *time.Time) error
	UpdateResult(ctx context.Context, runID string, result *Result, completedAt *time.Time) error
	UpdateError(ctx context.Context, runID, code, message string, retryable bool, completedAt *time.Time) error
	DeleteByUser(ctx context.Context, userId string) (int, error)
}
