package summaries

import "time"

// RunResponse is the outward-facing representation of a summary run.
type RunResponse struct {
	RunID            string     `json:"runId"`
	Status           string     `json:"status"`
	Resamples        int        `json:"resamples"`
	Seed             int64      `json:"seed"`
	ExcludeRaterType string     `json:"excludeRaterType,omitempty"`
	Source1          string     `json:"source1"`
	Source2          string     `json:"source2"`
	Result           *Result    `json:"result,omitempty"`
	ErrorCode        string     `json:"errorCode,omitempty"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	ErrorRetryable   bool       `json:"errorRetryable,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toResponse(run Run) RunResponse {
	return RunResponse{
		RunID:            run.ID,
		Status:           run.Status,
		Resamples:        run.Resamples,
		Seed:             run.Seed,
		ExcludeRaterType: run.ExcludeRaterType,
		Source1:          run.Source1,
		Source2:          run.Source2,
		Result:           run.Result,
		ErrorCode:        run.ErrorCode,
		ErrorMessage:     run.ErrorMessage,
		ErrorRetryable:   run.ErrorRetryable,
		StartedAt:        run.StartedAt,
		CompletedAt:      run.CompletedAt,
		CreatedAt:        run.CreatedAt,
	}
}

// toListResponse omits the result payload to keep list responses small.
func toListResponse(run Run) RunResponse {
	resp := toResponse(run)
	resp.Result = nil
	return resp
}
