package summaries

import "time"

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Run represents a summary computation job over one or more datasets.
type Run struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	IndependentID    string     `json:"independentDatasetId,omitempty"`
	PairwiseID       string     `json:"pairwiseDatasetId,omitempty"`
	CounterfactualID string     `json:"counterfactualDatasetId,omitempty"`
	WorkbookID       string     `json:"workbookDatasetId,omitempty"`
	Resamples        int        `json:"resamples"`
	Seed             int64      `json:"seed"`
	ExcludeRaterType string     `json:"excludeRaterType,omitempty"`
	Source1          string     `json:"source1"`
	Source2          string     `json:"source2"`
	Status           string     `json:"status"`
	Result           *Result    `json:"result,omitempty"`
	ErrorCode        string     `json:"errorCode,omitempty"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	ErrorRetryable   bool       `json:"errorRetryable,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Options returns the bootstrap options stored on the run.
func (r Run) Options() Options {
	return Options{
		Resamples:        r.Resamples,
		Seed:             r.Seed,
		ExcludeRaterType: r.ExcludeRaterType,
		Source1:          r.Source1,
		Source2:          r.Source2,
	}
}
