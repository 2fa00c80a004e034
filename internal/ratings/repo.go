package ratings

import "context"

// DatasetsRepo defines persistence operations for datasets.
type DatasetsRepo interface {
	Create(ctx context.Context, d Dataset) error
	GetByID(ctx context.Context, userId, datasetID string) (Dataset, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Dataset, error)
	CountByUser(ctx context.Context, userId string) (int, error)
	DeleteByUser(ctx context.Context, userId string) (int, error)
}
