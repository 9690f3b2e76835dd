package parcel

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadOptions selects the shapefile attribute columns to read.
type LoadOptions struct {
	// ValueField is the assessment amount column, e.g. "TOTAL_VALUE".
	ValueField string
	// IDField is the parcel identifier column, e.g. "LOC_ID". When empty
	// or missing, the shapefile record ordinal is used.
	IDField string
}

// LoadShapefile reads parcel polygons and assessed values from a MassGIS
// L3 parcel shapefile. Records with missing geometry or a non-positive
// value are dropped and counted; the returned set satisfies the
// aggregation core's preconditions except for reprojection.
func LoadShapefile(path string, opts LoadOptions) ([]Record, error) {
	if opts.ValueField == "" {
		return nil, eris.New("parcel: value field is required")
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	valueIdx, ok := fieldIdx[strings.ToLower(opts.ValueField)]
	if !ok {
		return nil, eris.Errorf("parcel: shapefile has no column %q", opts.ValueField)
	}
	idIdx, hasID := -1, false
	if opts.IDField != "" {
		idIdx, hasID = fieldIdx[strings.ToLower(opts.IDField)]
	}

	var records []Record
	var skipped int
	ordinal := 0

	for reader.Next() {
		_, shape := reader.Shape()
		ordinal++

		value, err := parseValue(reader.Attribute(valueIdx))
		if err != nil || value <= 0 {
			skipped++
			continue
		}

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		id := strconv.Itoa(ordinal)
		if hasID {
			if v := cleanAttribute(reader.Attribute(idIdx)); v != "" {
				id = v
			}
		}

		records = append(records, Record{ID: id, Geom: g, Value: value})
	}

	zap.L().Info("parcel: loaded shapefile",
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("skipped", skipped),
	)
	return records, nil
}

func parseValue(raw string) (float64, error) {
	v := cleanAttribute(raw)
	if v == "" {
		return 0, eris.New("parcel: empty value attribute")
	}
	return strconv.ParseFloat(v, 64)
}

func cleanAttribute(raw string) string {
	return strings.TrimSpace(strings.TrimRight(raw, "\x00"))
}

// shapeToGeom converts a shapefile polygon to a go-geom MultiPolygon in
// WGS84. Outer rings are wound clockwise in the shapefile encoding;
// counter-clockwise rings are holes of the preceding outer ring and are
// attached as interior rings. Non-polygon shapes and empty geometries
// return nil.
func shapeToGeom(shape shp.Shape) geom.T {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("parcel: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if ringWinding(flat) > 0 && current != nil {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("parcel: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("parcel: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		current = poly
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ringWinding returns twice the signed shoelace area of a closed flat XY
// ring, positive for counter-clockwise winding.
func ringWinding(flat []float64) float64 {
	var s float64
	for i := 0; i+3 < len(flat); i += 2 {
		s += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return s
}
