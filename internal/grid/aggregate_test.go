package grid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/masslots/parcelviz/internal/geometry"
)

func square(minX, minY, maxX, maxY float64) geom.T {
	return geometry.NewRect(minX, minY, maxX, maxY).Polygon()
}

// testGeoms spans a 3x3 grid once padded: bounds (10,10)-(290,290) pad to
// (0,0)-(300,300) at side 100.
func testGeoms() ([]geom.T, []float64) {
	geoms := []geom.T{
		square(10, 10, 20, 20),    // cell (0,0)
		square(110, 110, 120, 120), // cell (1,1)
		square(200, 200, 290, 290), // cell (2,2)
		square(90, 10, 110, 20),    // straddles cells (0,0) and (0,1)
	}
	values := []float64{100, 500, 900, 300}
	return geoms, values
}

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	geoms, values := testGeoms()
	part, err := NewPartition(geometry.NewRect(10, 10, 290, 290), 100)
	require.NoError(t, err)
	require.Equal(t, 3, part.Rows)
	require.Equal(t, 3, part.Cols)

	agg, err := NewAggregator(part, geoms, values)
	require.NoError(t, err)
	return agg
}

func TestNewAggregator_Errors(t *testing.T) {
	part, err := NewPartition(geometry.NewRect(0, 0, 100, 100), 100)
	require.NoError(t, err)

	_, err = NewAggregator(part, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewAggregator(part, []geom.T{square(0, 0, 10, 10)}, []float64{1, 2})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 geometries but 2 values")
}

func TestAggregator_Run(t *testing.T) {
	agg := newTestAggregator(t)

	stats, err := agg.Run(context.Background())
	require.NoError(t, err)

	byID := make(map[string]CellStat, len(stats))
	for _, s := range stats {
		byID[s.Cell.ID()] = s
	}

	// Four non-empty cells; the rest of the 3x3 grid is omitted entirely.
	require.Len(t, stats, 4)

	// Cell (0,0): the small square plus the straddling record.
	s := byID["Grid_0_0"]
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 200, s.Median, 1e-9)

	// Cell (0,1) in col-row ID terms: the straddler alone.
	s = byID["Grid_1_0"]
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 300, s.Median, 1e-9)

	s = byID["Grid_1_1"]
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 500, s.Median, 1e-9)

	s = byID["Grid_2_2"]
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 900, s.Median, 1e-9)
}

func TestAggregator_RowMajorOutput(t *testing.T) {
	agg := newTestAggregator(t)

	stats, err := agg.Run(context.Background())
	require.NoError(t, err)

	for i := 1; i < len(stats); i++ {
		prev, cur := stats[i-1].Cell, stats[i].Cell
		before := prev.Row < cur.Row || (prev.Row == cur.Row && prev.Col < cur.Col)
		assert.True(t, before, "stats out of row-major order at %d", i)
	}
}

func TestAggregator_Deterministic(t *testing.T) {
	agg := newTestAggregator(t)

	first, err := agg.Run(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := agg.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAggregator_CancelledContext(t *testing.T) {
	agg := newTestAggregator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Run(ctx)
	assert.Error(t, err)
}

func TestRun_Pipeline(t *testing.T) {
	geoms, values := testGeoms()

	res, err := Run(context.Background(), geoms, values, 100)
	require.NoError(t, err)
	require.NotNil(t, res.Partition)
	require.Len(t, res.Stats, 4)

	// Every emitted cell is classified against the global thresholds.
	for _, s := range res.Stats {
		assert.Equal(t, res.Thresholds.Classify(s.Median), s.Bucket)
		assert.GreaterOrEqual(t, s.Bucket, 1)
		assert.LessOrEqual(t, s.Bucket, 10)
	}
}

func TestRun_Empty(t *testing.T) {
	_, err := Run(context.Background(), nil, nil, 100)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
