package grid

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// Thresholds holds the nine decile cut points (10th through 90th
// percentile) computed once over the full value distribution. Every cell
// median is classified against the same thresholds so colors reflect the
// global distribution, not per-cell local ranges.
type Thresholds [9]float64

// ComputeThresholds calculates decile cut points with linear-interpolation
// quantile estimation over all values. Returns ErrEmptyInput for an empty
// slice. Fewer than ten distinct values cannot fill every bucket; that is
// logged as a warning and classification stays deterministic.
func ComputeThresholds(values []float64) (Thresholds, error) {
	var t Thresholds
	if len(values) == 0 {
		return t, ErrEmptyInput
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	for i := range t {
		t[i] = quantile(sorted, float64(i+1)/10)
	}

	if distinct := countDistinct(sorted); distinct < 10 {
		zap.L().Warn("grid: fewer than ten distinct values, decile buckets cannot all be filled",
			zap.Int("values", len(values)),
			zap.Int("distinct", distinct),
		)
	}
	return t, nil
}

// Quantile returns the p-quantile (0 <= p <= 1) of an unsorted value set
// using the same linear-interpolation estimator as the decile thresholds.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantile(sorted, p), nil
}

// quantile returns the p-quantile of an ascending slice using linear
// interpolation between the two nearest ranks (index (n-1)*p).
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Classify assigns a value to a decile bucket, 1 through 10. Values are
// compared with <= against the ascending thresholds and the first match
// wins, so a value exactly on a cut point falls in the lower bucket.
func (t Thresholds) Classify(v float64) int {
	for i, cut := range t {
		if v <= cut {
			return i + 1
		}
	}
	return 10
}

// Degenerate reports whether any two cut points coincide, which happens
// when the input has fewer than ten distinct values.
func (t Thresholds) Degenerate() bool {
	for i := 1; i < len(t); i++ {
		if t[i] == t[i-1] {
			return true
		}
	}
	return false
}

func countDistinct(sorted []float64) int {
	if len(sorted) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			n++
		}
	}
	return n
}
