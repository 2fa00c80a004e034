package summaries

import "annostat-backend/internal/stats"

const (
	// DefaultSource1 labels answers to the original question in pairwise and
	// counterfactual reporting.
	DefaultSource1 = "Candidate"
	// DefaultSource2 labels answers to the paired question.
	DefaultSource2 = "Baseline"
)

// Options controls how a summary run aggregates ratings.
type Options struct {
	Resamples        int
	Seed             int64
	ExcludeRaterType string
	Source1          string
	Source2          string
}

// WithDefaults fills unset fields from the package defaults.
func (o Options) WithDefaults() Options {
	if o.Resamples <= 0 {
		o.Resamples = stats.DefaultResamples
	}
	if o.Seed == 0 {
		o.Seed = stats.DefaultSeed
	}
	if o.Source1 == "" {
		o.Source1 = DefaultSource1
	}
	if o.Source2 == "" {
		o.Source2 = DefaultSource2
	}
	return o
}
