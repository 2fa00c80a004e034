package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"annostat-backend/internal/ratings"
	"annostat-backend/internal/summaries"
)

// Service manages account-level operations across datasets and summary runs.
type Service struct {
	DatasetsRepo ratings.DatasetsRepo
	RunsRepo     summaries.Repo
}

// ClaimResult reports how many records moved during a guest claim.
type ClaimResult struct {
	MigratedDatasets int `json:"migratedDatasets"`
	MigratedRuns     int `json:"migratedRuns"`
}

// Summary is an overview of a user's stored data.
type Summary struct {
	Datasets int `json:"datasets"`
	Runs     int `json:"runs"`
}

// DeleteResult reports how many records were removed.
type DeleteResult struct {
	DeletedDatasets int `json:"deletedDatasets"`
	DeletedRuns     int `json:"deletedRuns"`
}

// NewService constructs a Service.
func NewService(datasetsRepo ratings.DatasetsRepo, runsRepo summaries.Repo) *Service {
	return &Service{DatasetsRepo: datasetsRepo, RunsRepo: runsRepo}
}

// Overview returns counts of the user's datasets and runs.
func (s *Service) Overview(ctx context.Context, userID string) (Summary, error) {
	if strings.TrimSpace(userID) == "" {
		return Summary{}, errors.New("userID is required")
	}
	datasets, err := s.DatasetsRepo.CountByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	runs, err := s.RunsRepo.CountByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Datasets: datasets, Runs: runs}, nil
}

// DeleteAll removes every dataset and run owned by the user.
func (s *Service) DeleteAll(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("userID is required")
	}
	datasets, err := s.DatasetsRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	runs, err := s.RunsRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{DeletedDatasets: datasets, DeletedRuns: runs}, nil
}

// ClaimGuest moves guest-owned datasets and runs to an authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if dsPG, ok := s.DatasetsRepo.(*ratings.PGRepo); ok && dsPG != nil && dsPG.DB != nil {
		if runsPG, ok := s.RunsRepo.(*summaries.PGRepo); ok && runsPG != nil && runsPG.DB != nil {
			return claimWithTx(ctx, dsPG.DB, guestUserID, authedUserID)
		}
	}

	datasets, err := claimDatasets(ctx, s.DatasetsRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	runs, err := claimRuns(ctx, s.RunsRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDatasets: datasets, MigratedRuns: runs}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	dsRes, err := tx.ExecContext(ctx, `UPDATE datasets SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	dsCount, _ := dsRes.RowsAffected()

	runRes, err := tx.ExecContext(ctx, `UPDATE summary_runs SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	runCount, _ := runRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDatasets: int(dsCount), MigratedRuns: int(runCount)}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimDatasets(ctx context.Context, repo ratings.DatasetsRepo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("datasets repo does not support claim")
}

func claimRuns(ctx context.Context, repo summaries.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("runs repo does not support claim")
}
