package summaries

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Run // runID -> run
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Run),
	}
}

// Create stores a run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[run.ID] = run
	return nil
}

// GetByID returns a run by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.data[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// ListByUser returns runs for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var runs []Run
	for _, run := range r.data {
		if run.UserID == userId {
			runs = append(runs, run)
		}
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if offset >= len(runs) {
		return []Run{}, nil
	}
	end := len(runs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return runs[offset:end], nil
}

// CountByUser returns the number of runs a user owns.
func (r *MemoryRepo) CountByUser(ctx context.Context, userId string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, run := range r.data {
		if run.UserID == userId {
			n++
		}
	}
	return n, nil
}

// UpdateStatus sets the status and optionally the started timestamp.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, runID, status string, startedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.data[runID]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	if startedAt != nil {
		run.StartedAt = startedAt
	}
	r.data[runID] = run
	return nil
}

// UpdateResult stores the result and marks the run completed.
func (r *MemoryRepo) UpdateResult(ctx context.Context, runID string, result *Result, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.data[runID]
	if !ok {
		return ErrNotFound
	}
	run.Status = StatusCompleted
	run.Result = result
	run.CompletedAt = completedAt
	run.ErrorCode = ""
	run.ErrorMessage = ""
	run.ErrorRetryable = false
	r.data[runID] = run
	return nil
}

// UpdateError marks the run failed with error details.
func (r *MemoryRepo) UpdateError(ctx context.Context, runID, code, message string, retryable bool, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.data[runID]
	if !ok {
		return ErrNotFound
	}
	run.Status = StatusFailed
	run.ErrorCode = code
	run.ErrorMessage = message
	run.ErrorRetryable = retryable
	run.CompletedAt = completedAt
	r.data[runID] = run
	return nil
}

// ClaimGuest reassigns runs owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, run := range r.data {
		if run.UserID == guestUserID {
			run.UserID = authedUserID
			r.data[id] = run
			moved++
		}
	}
	return moved, nil
}

// DeleteByUser removes all runs owned by a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, run := range r.data {
		if run.UserID == userId {
			delete(r.data, id)
			removed++
		}
	}
	return removed, nil
}

var _ Repo = (*MemoryRepo)(nil)
