package ratings

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DatasetsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new dataset.
func (r *PGRepo) Create(ctx context.Context, d Dataset) error {
	const query = `
INSERT INTO datasets (
    id,
    user_id,
    kind,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    row_count,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		d.ID,
		d.UserID,
		string(d.Kind),
		d.FileName,
		d.MimeType,
		d.SizeBytes,
		d.StorageKey,
		d.RowCount,
		d.CreatedAt,
	)
	return err
}

// GetByID fetches a dataset by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, datasetID string) (Dataset, error) {
	const query = `
SELECT id, user_id, kind, file_name, mime_type, size_bytes, storage_key, row_count, created_at
FROM datasets
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`

	var d Dataset
	var kind string
	err := r.DB.QueryRowContext(ctx, query, userId, datasetID).Scan(
		&d.ID,
		&d.UserID,
		&kind,
		&d.FileName,
		&d.MimeType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.RowCount,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dataset{}, ErrNotFound
		}
		return Dataset{}, err
	}
	d.Kind = Kind(kind)
	return d, nil
}

// ListByUser lists datasets ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Dataset, error) {
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
SELECT id, user_id, kind, file_name, mime_type, size_bytes, storage_key, row_count, created_at
FROM datasets
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		var kind string
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&kind,
			&d.FileName,
			&d.MimeType,
			&d.SizeBytes,
			&d.StorageKey,
			&d.RowCount,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Kind = Kind(kind)
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountByUser returns the number of datasets a user owns.
func (r *PGRepo) CountByUser(ctx context.Context, userId string) (int, error) {
	const query = `
SELECT COUNT(*) FROM datasets WHERE user_id = $1 AND deleted_at IS NULL`
	var n int
	if err := r.DB.QueryRowContext(ctx, query, userId).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClaimGuest reassigns datasets owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE datasets SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

// DeleteByUser soft-deletes all datasets owned by a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userId string) (int, error) {
	const query = `
UPDATE datasets SET deleted_at = NOW() WHERE user_id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userId)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

var _ DatasetsRepo = (*PGRepo)(nil)
