package stats

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultResamples is the bootstrap resample count used when none is set.
	DefaultResamples = 1000
	// DefaultSeed keeps confidence intervals reproducible across runs.
	DefaultSeed = 12345

	defaultConfidence = 0.95
)

// Options controls the bootstrap resampling.
type Options struct {
	Resamples  int
	Seed       int64
	Confidence float64
}

// Interval is a two-sided confidence interval. Bounds are NaN when the
// bootstrap distribution is degenerate.
type Interval struct {
	Low  float64
	High float64
}

// Valid reports whether both bounds are finite numbers.
func (iv Interval) Valid() bool {
	return !math.IsNaN(iv.Low) && !math.IsNaN(iv.High)
}

// BootstrapCI computes a BCa bootstrap confidence interval for statFn over
// samples. The resampling is driven by an explicit seed so repeated calls
// with the same inputs produce identical intervals. A constant or too-small
// input yields NaN bounds rather than an error.
func BootstrapCI(samples []float64, statFn func([]float64) float64, opts Options) Interval {
	nan := Interval{Low: math.NaN(), High: math.NaN()}
	n := len(samples)
	if n < 2 || statFn == nil {
		return nan
	}

	resamples := opts.Resamples
	if resamples <= 0 {
		resamples = DefaultResamples
	}
	confidence := opts.Confidence
	if confidence <= 0 || confidence >= 1 {
		confidence = defaultConfidence
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	observed := statFn(samples)

	dist := make([]float64, resamples)
	resample := make([]float64, n)
	for b := range dist {
		for i := range resample {
			resample[i] = samples[rng.Intn(n)]
		}
		dist[b] = statFn(resample)
	}
	sort.Float64s(dist)

	// Count of bootstrap statistics strictly below the observed value.
	below := sort.SearchFloat64s(dist, observed)
	if below == 0 || below == resamples {
		// Degenerate distribution: the bias correction has no finite value.
		return nan
	}

	normal := distuv.UnitNormal
	z0 := normal.Quantile(float64(below) / float64(resamples))

	accel := jackknifeAcceleration(samples, statFn)
	if math.IsNaN(accel) {
		return nan
	}

	alpha := (1 - confidence) / 2
	low := adjustedQuantile(dist, z0, accel, normal.Quantile(alpha), normal)
	high := adjustedQuantile(dist, z0, accel, normal.Quantile(1-alpha), normal)
	return Interval{Low: low, High: high}
}

func adjustedQuantile(sortedDist []float64, z0, accel, z float64, normal distuv.Normal) float64 {
	shifted := z0 + z
	p := normal.CDF(z0 + shifted/(1-accel*shifted))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, sortedDist, nil)
}

func jackknifeAcceleration(samples []float64, statFn func([]float64) float64) float64 {
	n := len(samples)
	loo := make([]float64, n)
	tmp := make([]float64, 0, n-1)
	for i := range samples {
		tmp = tmp[:0]
		tmp = append(tmp, samples[:i]...)
		tmp = append(tmp, samples[i+1:]...)
		loo[i] = statFn(tmp)
	}

	mean := stat.Mean(loo, nil)
	var num, den float64
	for _, v := range loo {
		d := mean - v
		num += d * d * d
		den += d * d
	}
	if den == 0 {
		return math.NaN()
	}
	return num / (6 * math.Pow(den, 1.5))
}
