package ratings

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DatasetsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Dataset // userId -> datasets
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Dataset),
	}
}

// Create stores a dataset for a user.
func (r *MemoryRepo) Create(ctx context.Context, d Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[d.UserID] = append(r.data[d.UserID], d)
	return nil
}

// GetByID returns a dataset by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, datasetID string) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.data[userId] {
		if d.ID == datasetID {
			return d, nil
		}
	}
	return Dataset{}, ErrNotFound
}

// ListByUser returns datasets for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Dataset, error) {
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
	userSets := r.data[userId]
	r.mu.RUnlock()

	if len(userSets) == 0 || offset >= len(userSets) {
		return []Dataset{}, nil
	}

	sets := make([]Dataset, len(userSets))
	copy(sets, userSets)
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].CreatedAt.After(sets[j].CreatedAt)
	})

	end := len(sets)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sets[offset:end], nil
}

// CountByUser returns the number of datasets a user owns.
func (r *MemoryRepo) CountByUser(ctx context.Context, userId string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data[userId]), nil
}

// ClaimGuest reassigns datasets owned by a guest user to an authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := r.data[guestUserID]
	if len(moved) == 0 {
		return 0, nil
	}
	for i := range moved {
		moved[i].UserID = authedUserID
	}
	r.data[authedUserID] = append(r.data[authedUserID], moved...)
	delete(r.data, guestUserID)
	return len(moved), nil
}

// DeleteByUser removes all datasets owned by a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := len(r.data[userId])
	delete(r.data, userId)
	return removed, nil
}

var _ DatasetsRepo = (*MemoryRepo)(nil)
