// Package parcel loads property-parcel records from MassGIS shapefiles and
// prepares them for grid aggregation: positive-value filtering and
// reprojection into a single planar CRS. The aggregation core never
// re-validates or reprojects; that is this package's contract.
package parcel

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/masslots/parcelviz/internal/geometry"
)

// ErrInvalidGeometry marks a record whose geometry is absent or malformed.
// Such records must be excluded before reaching the aggregation core.
var ErrInvalidGeometry = eris.New("parcel: record has no valid geometry")

// Record is one property parcel: an opaque id, a polygon or multipolygon
// geometry, and an assessed value. Records are immutable after load and
// discarded after a visualization pass.
type Record struct {
	ID    string
	Geom  geom.T
	Value float64
}

// Valid reports whether the record can enter the aggregation core: a
// non-nil polygonal geometry and a positive value.
func (r Record) Valid() bool {
	if r.Value <= 0 {
		return false
	}
	switch g := r.Geom.(type) {
	case *geom.Polygon:
		return g.NumLinearRings() > 0
	case *geom.MultiPolygon:
		return g.NumPolygons() > 0
	default:
		return false
	}
}

// FilterValid returns the records passing Valid, preserving order. Dropped
// counts are logged so silently shrinking datasets are visible.
func FilterValid(records []Record) []Record {
	out := make([]Record, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.Valid() {
			out = append(out, r)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		zap.L().Info("parcel: dropped invalid records",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(out)),
		)
	}
	return out
}

// Validate returns ErrInvalidGeometry if any record would violate the
// aggregation core's precondition. Use after loading from a store whose
// contents were written by another tool version.
func Validate(records []Record) error {
	for _, r := range records {
		if !r.Valid() {
			return eris.Wrapf(ErrInvalidGeometry, "record %q", r.ID)
		}
	}
	return nil
}

// Project returns copies of the records with geometries projected from
// WGS84 to Web Mercator, the planar CRS the grid core operates in.
func Project(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{ID: r.ID, Geom: geometry.ProjectGeom(r.Geom), Value: r.Value}
	}
	return out
}

// Split separates records into the parallel geometry and value slices the
// aggregator consumes.
func Split(records []Record) ([]geom.T, []float64) {
	geoms := make([]geom.T, len(records))
	values := make([]float64, len(records))
	for i, r := range records {
		geoms[i] = r.Geom
		values[i] = r.Value
	}
	return geoms, values
}

// Bounds returns the combined bounding rectangle of all record geometries.
func Bounds(records []Record) geometry.Rect {
	if len(records) == 0 {
		return geometry.Rect{}
	}
	b := geometry.BoundsOf(records[0].Geom)
	for _, r := range records[1:] {
		b = b.Union(geometry.BoundsOf(r.Geom))
	}
	return b
}
