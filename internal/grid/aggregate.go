package grid

import (
	"context"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/masslots/parcelviz/internal/geometry"
)

// ErrEmptyInput is returned when aggregation is invoked with zero valid
// records. No partial output is produced.
var ErrEmptyInput = eris.New("grid: no valid records")

// CellStat holds the statistics for one non-empty cell. Cells with zero
// intersecting records are never emitted; absence of a cell is the signal,
// not a zero-valued placeholder.
type CellStat struct {
	Cell   Cell    `json:"cell"`
	Median float64 `json:"median_value"`
	Count  int     `json:"count"`
	Bucket int     `json:"decile_bucket"`
}

// Aggregator joins record geometries to partition cells and computes the
// per-cell median and count. Records are read-only during a run; a record
// spanning several cells contributes fully to every cell it intersects.
type Aggregator struct {
	part   *Partition
	index  *Index
	geoms  []geom.T
	values []float64
}

// NewAggregator validates the input set and builds the spatial index from
// the records' bounding boxes. Geometries and values are parallel slices;
// the caller must already have excluded records with missing geometry or
// non-positive values and projected everything into one planar CRS.
func NewAggregator(part *Partition, geoms []geom.T, values []float64) (*Aggregator, error) {
	if len(geoms) == 0 {
		return nil, ErrEmptyInput
	}
	if len(geoms) != len(values) {
		return nil, eris.Errorf("grid: %d geometries but %d values", len(geoms), len(values))
	}

	boxes := make([]geometry.Rect, len(geoms))
	for i, g := range geoms {
		boxes[i] = geometry.BoundsOf(g)
	}

	return &Aggregator{
		part:   part,
		index:  NewIndex(boxes),
		geoms:  geoms,
		values: values,
	}, nil
}

// Run computes statistics for every non-empty cell, in deterministic
// row-major order. Cell rows are processed in parallel; cells share no
// mutable state, so the result is identical to a serial pass.
func (a *Aggregator) Run(ctx context.Context) ([]CellStat, error) {
	rows := make([][]CellStat, a.part.Rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for row := 0; row < a.part.Rows; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var stats []CellStat
			for col := 0; col < a.part.Cols; col++ {
				if stat, ok := a.cellStat(a.part.CellAt(row, col)); ok {
					stats = append(stats, stat)
				}
			}
			rows[row] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "grid: aggregate")
	}

	var out []CellStat
	for _, stats := range rows {
		out = append(out, stats...)
	}
	return out, nil
}

// cellStat computes the statistic for one cell. The second return value is
// false when no record truly intersects the cell.
func (a *Aggregator) cellStat(c Cell) (CellStat, bool) {
	candidates := a.index.Query(c.Rect)
	if len(candidates) == 0 {
		return CellStat{}, false
	}

	var vals []float64
	for _, i := range candidates {
		if geometry.Intersects(a.geoms[i], c.Rect) {
			vals = append(vals, a.values[i])
		}
	}
	if len(vals) == 0 {
		return CellStat{}, false
	}

	return CellStat{Cell: c, Median: median(vals), Count: len(vals)}, true
}

// median returns the standard median of a multiset: the middle element for
// odd cardinality, the average of the two middle elements for even. The
// input slice is sorted in place.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
