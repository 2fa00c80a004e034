package summaries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"annostat-backend/internal/queue"
	"annostat-backend/internal/ratings"
	"annostat-backend/internal/shared/metrics"
	"annostat-backend/internal/shared/telemetry"
	"annostat-backend/internal/usage"
)

// Service contains business logic for summary runs.
type Service struct {
	Repo     Repo
	Datasets *ratings.Service
	Usage    *usage.Service
	JobQueue queue.Client
	Defaults Options
}

// CreateParams describes a requested summary run.
type CreateParams struct {
	IndependentID    string
	PairwiseID       string
	CounterfactualID string
	WorkbookID       string
	Resamples        int
	Seed             int64
	ExcludeRaterType *string
	Source1          string
	Source2          string
}

// Create validates the referenced datasets, records a queued run and kicks
// off asynchronous completion, via the job queue when one is configured.
func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (Run, error) {
	if userID == "" {
		return Run{}, errors.New("userID is required")
	}
	if p.IndependentID == "" && p.PairwiseID == "" && p.CounterfactualID == "" && p.WorkbookID == "" {
		return Run{}, fmt.Errorf("%w: at least one dataset is required", ErrValidation)
	}
	if p.CounterfactualID != "" && p.IndependentID == "" && p.WorkbookID == "" {
		return Run{}, fmt.Errorf("%w: counterfactual summaries need independent ratings", ErrValidation)
	}

	refs := []struct {
		id   string
		kind ratings.Kind
	}{
		{p.IndependentID, ratings.KindIndependent},
		{p.PairwiseID, ratings.KindPairwise},
		{p.CounterfactualID, ratings.KindCounterfactual},
		{p.WorkbookID, ratings.KindWorkbook},
	}
	for _, ref := range refs {
		if ref.id == "" {
			continue
		}
		d, err := s.Datasets.Get(ctx, userID, ref.id)
		if err != nil {
			if errors.Is(err, ratings.ErrNotFound) {
				return Run{}, fmt.Errorf("%w: dataset %s not found", ErrValidation, ref.id)
			}
			return Run{}, err
		}
		if d.Kind != ref.kind {
			return Run{}, fmt.Errorf("%w: dataset %s is %s, expected %s", ErrValidation, ref.id, d.Kind, ref.kind)
		}
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Run{}, err
		}
		if !ok {
			return Run{}, usage.ErrLimitReached
		}
	}

	opts := s.resolveOptions(p)
	run := Run{
		ID:               uuid.NewString(),
		UserID:           userID,
		IndependentID:    p.IndependentID,
		PairwiseID:       p.PairwiseID,
		CounterfactualID: p.CounterfactualID,
		WorkbookID:       p.WorkbookID,
		Resamples:        opts.Resamples,
		Seed:             opts.Seed,
		ExcludeRaterType: opts.ExcludeRaterType,
		Source1:          opts.Source1,
		Source2:          opts.Source2,
		Status:           StatusQueued,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			return Run{}, err
		}
	}

	if s.JobQueue != nil {
		msg := queue.Message{
			RunID:      run.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.JobQueue.Send(ctx, msg); err != nil {
			s.failRun(ctx, run.ID, run.UserID, fmt.Errorf("enqueue run: %w", err), nil)
			return Run{}, err
		}
	} else {
		go s.completeAsync(backgroundWithRequestID(ctx), run.ID)
	}

	return run, nil
}

func (s *Service) resolveOptions(p CreateParams) Options {
	opts := s.Defaults
	if p.Resamples > 0 {
		opts.Resamples = p.Resamples
	}
	if p.Seed != 0 {
		opts.Seed = p.Seed
	}
	if p.ExcludeRaterType != nil {
		opts.ExcludeRaterType = *p.ExcludeRaterType
	}
	if p.Source1 != "" {
		opts.Source1 = p.Source1
	}
	if p.Source2 != "" {
		opts.Source2 = p.Source2
	}
	return opts.WithDefaults()
}

// Get returns a run owned by the user.
func (s *Service) Get(ctx context.Context, userID, runID string) (Run, error) {
	if runID == "" {
		return Run{}, errors.New("runID is required")
	}
	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.UserID != userID {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// List returns runs for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) completeAsync(ctx context.Context, runID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failRun(ctx, runID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.ProcessRun(ctx, runID)
}

// ProcessRun executes a queued run to completion. Failures are recorded on
// the run and also returned so queue consumers can decide on redelivery.
func (s *Service) ProcessRun(ctx context.Context, runID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, runID, StatusProcessing, &startedAt); err != nil {
		err = fmt.Errorf("set processing failed: %w", err)
		s.failRun(ctx, runID, "", err, &startedAt)
		return err
	}

	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		err = fmt.Errorf("run lookup: %w", err)
		s.failRun(ctx, runID, "", err, &startedAt)
		return err
	}

	metrics.IncSummaryStarted()
	telemetry.Info("summary.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           run.UserID,
		"run_id":            run.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Datasets == nil {
		err = errors.New("missing dataset dependencies")
		s.failRun(ctx, runID, run.UserID, err, &startedAt)
		return err
	}

	result, err := s.compute(ctx, run)
	if err != nil {
		s.failRun(ctx, runID, run.UserID, err, &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateResult(ctx, runID, result, &completedAt); err != nil {
		err = fmt.Errorf("set run result failed: %w", err)
		s.failRun(ctx, runID, run.UserID, err, &startedAt)
		return err
	}

	metrics.IncSummaryCompleted()
	metrics.ObserveSummaryDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("summary.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           run.UserID,
		"run_id":            run.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// compute loads every referenced dataset and runs the aggregation pipeline.
func (s *Service) compute(ctx context.Context, run Run) (*Result, error) {
	tables := make(map[ratings.Kind]ratings.Table)

	if run.WorkbookID != "" {
		d, err := s.Datasets.Get(ctx, run.UserID, run.WorkbookID)
		if err != nil {
			return nil, fmt.Errorf("workbook dataset lookup id=%s: %w", run.WorkbookID, err)
		}
		parsed, err := s.Datasets.Tables(ctx, d)
		if err != nil {
			return nil, err
		}
		for kind, t := range parsed {
			tables[kind] = t
		}
	}

	// Standalone CSV datasets take precedence over workbook sheets.
	csvRefs := []struct {
		id   string
		kind ratings.Kind
	}{
		{run.IndependentID, ratings.KindIndependent},
		{run.PairwiseID, ratings.KindPairwise},
		{run.CounterfactualID, ratings.KindCounterfactual},
	}
	for _, ref := range csvRefs {
		if ref.id == "" {
			continue
		}
		d, err := s.Datasets.Get(ctx, run.UserID, ref.id)
		if err != nil {
			return nil, fmt.Errorf("dataset lookup id=%s: %w", ref.id, err)
		}
		parsed, err := s.Datasets.Tables(ctx, d)
		if err != nil {
			return nil, err
		}
		tables[ref.kind] = parsed[ref.kind]
	}

	return Summarize(tables, run.Options().WithDefaults())
}

// Summarize runs the aggregation pipeline over the parsed rubric tables.
func Summarize(tables map[ratings.Kind]ratings.Table, opts Options) (*Result, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no rubric tables found", ErrValidation)
	}
	if _, ok := tables[ratings.KindCounterfactual]; ok {
		if _, ok := tables[ratings.KindIndependent]; !ok {
			return nil, fmt.Errorf("%w: counterfactual summaries need independent ratings", ErrValidation)
		}
	}

	result := &Result{}

	var preparedIndependent ratings.Table
	if t, ok := tables[ratings.KindIndependent]; ok {
		preparedIndependent = prepare(t, opts)
		result.Tables = append(result.Tables, aggregate("independent", preparedIndependent, opts))
	}

	if t, ok := tables[ratings.KindPairwise]; ok {
		prepared := prepare(t, opts)
		indicators := preferenceIndicators(prepared, opts)
		result.Tables = append(result.Tables, aggregate("pairwise", indicators, opts))
	}

	if t, ok := tables[ratings.KindCounterfactual]; ok {
		pairs := filterRaterType(t, opts.ExcludeRaterType)
		exactlyOne, oneOrMore, both, unmatched := counterfactualTables(pairs, preparedIndependent)
		result.UnmatchedPairs = unmatched
		result.Tables = append(result.Tables,
			aggregate("counterfactual_exactly_one", deriveUnion(exactlyOne), opts),
			aggregate("counterfactual_one_or_more", deriveUnion(oneOrMore), opts),
			aggregate("counterfactual_both", deriveUnion(both), opts),
		)
	}

	return result, nil
}

func (s *Service) failRun(ctx context.Context, runID, userID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateError(context.Background(), runID, code, msg, retryable, &completedAt); updateErr != nil {
		telemetry.Error("summary.fail_update", map[string]any{
			"run_id": runID,
			"error":  updateErr.Error(),
			"orig":   msg,
		})
	}
	metrics.IncSummaryFailed()
	if startedAt != nil {
		metrics.ObserveSummaryDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("summary.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"run_id":            runID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ratings.ErrInvalidInput) {
		return ErrorCodeValidation, false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "validation") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "dataset") || strings.Contains(msg, "storage") ||
		strings.Contains(msg, "run result") || strings.Contains(msg, "set processing") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
