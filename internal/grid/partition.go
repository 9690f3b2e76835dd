// Package grid implements the grid aggregation engine: partitioning a
// planar region into fixed-size square cells, spatially joining parcel
// polygons to cells through a bounding-box index, computing per-cell
// medians, and classifying medians into global deciles.
//
// All components are pure over their inputs and hold no cross-call state;
// a full pass is re-evaluated per visualization invocation.
package grid

import (
	"fmt"
	"iter"
	"math"

	"github.com/rotisserie/eris"

	"github.com/masslots/parcelviz/internal/geometry"
)

// DefaultCellSize is the default cell side length in meters, a quarter mile.
const DefaultCellSize = 402.25

// paddingFraction is the share of the cell side added to every edge of the
// data bounding region so boundary parcels are not clipped.
const paddingFraction = 0.1

// Cell is one square of the partition, identified by row-major indices.
type Cell struct {
	Row  int           `json:"row"`
	Col  int           `json:"col"`
	Rect geometry.Rect `json:"rect"`
}

// ID returns a stable identifier for the cell within its grid.
func (c Cell) ID() string {
	return fmt.Sprintf("Grid_%d_%d", c.Col, c.Row)
}

// Partition divides a padded bounding region into rows x cols square cells
// of constant side length. It is a pure function of its inputs; cells are
// derived on demand and never stored.
type Partition struct {
	Region geometry.Rect // padded region the cells tile exactly
	Side   float64
	Rows   int
	Cols   int
}

// NewPartition builds the partition covering region with cells of the
// given side length. The region is padded by 10% of the side on each edge;
// the final row and column may extend past the data extent, which is
// intentional over-coverage.
func NewPartition(region geometry.Rect, side float64) (*Partition, error) {
	if side <= 0 {
		return nil, eris.New("grid: cell side must be positive")
	}
	if region.IsEmpty() {
		return nil, eris.New("grid: empty bounding region")
	}

	padded := region.Pad(side * paddingFraction)
	cols := int(math.Ceil(padded.Width() / side))
	rows := int(math.Ceil(padded.Height() / side))

	return &Partition{Region: padded, Side: side, Rows: rows, Cols: cols}, nil
}

// CellAt returns the cell at the given row and column.
func (p *Partition) CellAt(row, col int) Cell {
	return Cell{
		Row: row,
		Col: col,
		Rect: geometry.NewRect(
			p.Region.MinX+float64(col)*p.Side,
			p.Region.MinY+float64(row)*p.Side,
			p.Region.MinX+float64(col+1)*p.Side,
			p.Region.MinY+float64(row+1)*p.Side,
		),
	}
}

// NumCells returns the total number of cells in the partition.
func (p *Partition) NumCells() int { return p.Rows * p.Cols }

// Cells returns a restartable row-major sequence of all cells.
func (p *Partition) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := 0; row < p.Rows; row++ {
			for col := 0; col < p.Cols; col++ {
				if !yield(p.CellAt(row, col)) {
					return
				}
			}
		}
	}
}
