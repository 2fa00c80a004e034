package ratings

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"annostat-backend/internal/shared/storage/object"
)

// Service contains business logic for ratings datasets.
type Service struct {
	Store object.ObjectStore
	Repo  DatasetsRepo
}

// Upload parses the file to validate it, saves it to object storage and
// records the dataset. The whole file is parsed up front so a malformed
// upload is rejected before anything is stored.
func (s *Service) Upload(ctx context.Context, userId string, kind Kind, fileName string, r io.Reader) (Dataset, error) {
	if fileName == "" {
		return Dataset{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if !ValidKind(kind) {
		return Dataset{}, fmt.Errorf("%w: unknown ratings kind %q", ErrInvalidInput, kind)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read upload: %w", err)
	}

	rowCount, err := validateAndCount(kind, data)
	if err != nil {
		return Dataset{}, err
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, bytes.NewReader(data))
	if err != nil {
		return Dataset{}, err
	}

	d := Dataset{
		ID:         uuid.NewString(),
		UserID:     userId,
		Kind:       kind,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		RowCount:   rowCount,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, d); err != nil {
		return Dataset{}, err
	}

	return d, nil
}

// Get returns a dataset by ID for a user.
func (s *Service) Get(ctx context.Context, userId, datasetID string) (Dataset, error) {
	return s.Repo.GetByID(ctx, userId, datasetID)
}

// List returns datasets for a user.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Dataset, error) {
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Tables loads and parses a stored dataset. CSV datasets yield a single
// table for their rubric; workbooks yield one table per recognized sheet.
func (s *Service) Tables(ctx context.Context, d Dataset) (map[Kind]Table, error) {
	f, err := s.Store.Open(ctx, d.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", d.ID, err)
	}
	defer f.Close()

	if d.Kind == KindWorkbook {
		return ReadWorkbook(f)
	}

	table, err := ReadCSV(d.Kind, f)
	if err != nil {
		return nil, err
	}
	return map[Kind]Table{d.Kind: table}, nil
}

func validateAndCount(kind Kind, data []byte) (int, error) {
	if kind == KindWorkbook {
		tables, err := ReadWorkbook(bytes.NewReader(data))
		if err != nil {
			return 0, err
		}
		total := 0
		for _, t := range tables {
			total += len(t.Rows)
		}
		return total, nil
	}

	table, err := ReadCSV(kind, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}
