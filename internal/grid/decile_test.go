package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestComputeThresholds_TenDistinctValues(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	th, err := ComputeThresholds(values)
	require.NoError(t, err)

	want := Thresholds{19, 28, 37, 46, 55, 64, 73, 82, 91}
	for i := range th {
		assert.InDelta(t, want[i], th[i], 1e-9, "threshold %d", i)
	}
	assert.False(t, th.Degenerate())

	// Each of the ten values lands in its own bucket.
	for i, v := range values {
		assert.Equal(t, i+1, th.Classify(v), "value %v", v)
	}
}

func TestComputeThresholds_OrderIndependent(t *testing.T) {
	a, err := ComputeThresholds([]float64{5, 1, 4, 2, 3})
	require.NoError(t, err)
	b, err := ComputeThresholds([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestComputeThresholds_Empty(t *testing.T) {
	_, err := ComputeThresholds(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestComputeThresholds_SingleValueDegenerate(t *testing.T) {
	th, err := ComputeThresholds([]float64{42})
	require.NoError(t, err)
	assert.True(t, th.Degenerate())
	for i := range th {
		assert.Equal(t, 42.0, th[i])
	}
	// Classification stays deterministic on collapsed thresholds.
	assert.Equal(t, 1, th.Classify(42))
	assert.Equal(t, 1, th.Classify(0))
	assert.Equal(t, 10, th.Classify(43))
}

func TestComputeThresholds_WarnsBelowTenDistinctValues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(prev)

	// Nine distinct values interpolate to nine distinct thresholds, yet
	// cannot fill ten buckets; the warning still fires.
	th, err := ComputeThresholds([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)
	assert.False(t, th.Degenerate())
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "distinct")

	// Ten distinct values stay quiet.
	_, err = ComputeThresholds([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestClassify_TieGoesToLowerBucket(t *testing.T) {
	th := Thresholds{10, 20, 30, 40, 50, 60, 70, 80, 90}

	assert.Equal(t, 1, th.Classify(10))
	assert.Equal(t, 2, th.Classify(10.0001))
	assert.Equal(t, 5, th.Classify(50))
	assert.Equal(t, 9, th.Classify(90))
	assert.Equal(t, 10, th.Classify(90.5))
}

func TestClassify_Monotonic(t *testing.T) {
	th := Thresholds{10, 20, 30, 40, 50, 60, 70, 80, 90}

	prev := 0
	for v := 0.0; v <= 100; v += 0.5 {
		b := th.Classify(v)
		assert.GreaterOrEqual(t, b, prev, "value %v", v)
		assert.GreaterOrEqual(t, b, 1)
		assert.LessOrEqual(t, b, 10)
		prev = b
	}
}

func TestQuantile_Interpolation(t *testing.T) {
	values := []float64{400, 100, 300, 200}

	q, err := Quantile(values, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 250, q, 1e-9)

	q, err = Quantile(values, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, q, 1e-9)

	q, err = Quantile(values, 1)
	require.NoError(t, err)
	assert.InDelta(t, 400, q, 1e-9)

	// pos = 3 * 0.25 = 0.75: interpolate between 100 and 200.
	q, err = Quantile(values, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 175, q, 1e-9)
}

func TestQuantile_Empty(t *testing.T) {
	_, err := Quantile(nil, 0.5)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 250, median([]float64{100, 200, 300, 400}), 1e-9)
	assert.InDelta(t, 300, median([]float64{500, 100, 300}), 1e-9)
	assert.InDelta(t, 7, median([]float64{7}), 1e-9)
}
