package result

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cloud-bulldozer/search-bench/pkg/sample"
	mstats "github.com/aclements/go-moremath/stats"
	stats "github.com/montanaflynn/stats"
)

// ErrNoSamples is returned when no duration is left to reduce.
var ErrNoSamples = errors.New("no samples to report")

// Percentiles is the fixed list of fractions every report carries.
var Percentiles = []float64{0.50, 0.66, 0.75, 0.80, 0.90, 0.95, 0.98, 0.99, 1.00}

// rankEpsilon absorbs binary representation error in p*count, e.g. 0.98*50.
const rankEpsilon = 1e-9

// PercentileValue is the latency selected for one fraction.
type PercentileValue struct {
	Fraction float64 `json:"fraction"`
	Nanos    int64   `json:"nanos"`
}

// Report describes the reduced trial data
type Report struct {
	Trials      int                  `json:"trials"`
	Failures    int                  `json:"failures"`
	Samples     int                  `json:"samples"`
	Policy      sample.FailurePolicy `json:"failurePolicy"`
	Mean        float64              `json:"meanNanos"`
	Min         int64                `json:"minNanos"`
	Max         int64                `json:"maxNanos"`
	StdDev      float64              `json:"stdDevNanos"`
	Percentiles []PercentileValue    `json:"percentiles"`
}

// RankIndex returns the nearest-rank index floor(p*count)-1 clamped to
// [0, count-1]. count must be positive.
func RankIndex(p float64, count int) int {
	idx := int(math.Floor(p*float64(count)+rankEpsilon)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > count-1 {
		idx = count - 1
	}
	return idx
}

// Average accepts array of durations to calculate the mean
func Average(vals []int64) (float64, error) {
	return stats.Mean(toFloat(vals))
}

// spread returns the sample standard deviation, zero below two samples.
func spread(vals []int64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return mstats.Sample{Xs: toFloat(vals)}.StdDev()
}

func toFloat(vals []int64) stats.Float64Data {
	f := make(stats.Float64Data, len(vals))
	for i, v := range vals {
		f[i] = float64(v)
	}
	return f
}

// Summarize reduces a SampleSet into a Report. Failed trials are kept or
// dropped according to policy. The SampleSet is not modified.
func Summarize(set sample.SampleSet, policy sample.FailurePolicy) (Report, error) {
	durations := set.Durations(policy)
	if len(durations) == 0 {
		return Report{}, fmt.Errorf("%w: %d trials, %d failed, failure policy %s", ErrNoSamples, len(set), set.Failures(), policy)
	}
	slices.Sort(durations)

	mean, err := Average(durations)
	if err != nil {
		return Report{}, err
	}
	r := Report{
		Trials:      len(set),
		Failures:    set.Failures(),
		Samples:     len(durations),
		Policy:      policy,
		Mean:        mean,
		Min:         durations[0],
		Max:         durations[len(durations)-1],
		StdDev:      spread(durations),
		Percentiles: make([]PercentileValue, 0, len(Percentiles)),
	}
	for _, p := range Percentiles {
		r.Percentiles = append(r.Percentiles, PercentileValue{
			Fraction: p,
			Nanos:    durations[RankIndex(p, len(durations))],
		})
	}
	return r, nil
}

// Percentile returns the value reported for fraction p, if present.
func (r Report) Percentile(p float64) (int64, bool) {
	for _, pv := range r.Percentiles {
		if pv.Fraction == p {
			return pv.Nanos, true
		}
	}
	return 0, false
}

// Percent renders a fraction as a percentage without float noise (0.66 -> 66).
func Percent(p float64) float64 {
	return math.Round(p*10000) / 100
}
