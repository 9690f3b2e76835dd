package grid

import (
	"context"
	"time"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/geometry"
)

// Result is the output of one full aggregation pass.
type Result struct {
	Partition  *Partition
	Stats      []CellStat
	Thresholds Thresholds
}

// Run executes the whole pipeline over a pre-filtered, pre-projected
// record set: partition the padded data bounds, aggregate per cell, compute
// global decile thresholds, and classify every cell median. Running twice
// on identical input yields an identical result, order included.
func Run(ctx context.Context, geoms []geom.T, values []float64, side float64) (*Result, error) {
	if len(geoms) == 0 {
		return nil, ErrEmptyInput
	}
	start := time.Now()

	bounds := geometry.BoundsOf(geoms[0])
	for _, g := range geoms[1:] {
		bounds = bounds.Union(geometry.BoundsOf(g))
	}

	part, err := NewPartition(bounds, side)
	if err != nil {
		return nil, err
	}

	agg, err := NewAggregator(part, geoms, values)
	if err != nil {
		return nil, err
	}
	stats, err := agg.Run(ctx)
	if err != nil {
		return nil, err
	}

	thresholds, err := ComputeThresholds(values)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].Bucket = thresholds.Classify(stats[i].Median)
	}

	zap.L().Info("grid: aggregation complete",
		zap.Int("records", len(geoms)),
		zap.Int("rows", part.Rows),
		zap.Int("cols", part.Cols),
		zap.Int("cells_with_data", len(stats)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Partition: part, Stats: stats, Thresholds: thresholds}, nil
}
