package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
)

// WebMercatorRadius is the sphere radius used by EPSG:3857.
const WebMercatorRadius = 6378137.0

// SRID codes for the two coordinate systems the loader converts between.
const (
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)

// ToMercator projects a WGS84 lon/lat coordinate onto the Web Mercator
// plane (EPSG:3857), in meters.
func ToMercator(lng, lat float64) (x, y float64) {
	x = WebMercatorRadius * lng * math.Pi / 180
	y = WebMercatorRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// FromMercator converts a Web Mercator coordinate back to WGS84 lon/lat
// degrees.
func FromMercator(x, y float64) (lng, lat float64) {
	lng = x / WebMercatorRadius * 180 / math.Pi
	lat = (2*math.Atan(math.Exp(y/WebMercatorRadius)) - math.Pi/2) * 180 / math.Pi
	return lng, lat
}

// ProjectGeom returns a copy of g with every coordinate projected from
// WGS84 to Web Mercator. The input geometry is not modified.
func ProjectGeom(g geom.T) geom.T {
	return mapCoords(g, SRIDWebMercator, func(x, y float64) (float64, float64) {
		return ToMercator(x, y)
	})
}

// UnprojectGeom returns a copy of g with every coordinate converted from
// Web Mercator back to WGS84.
func UnprojectGeom(g geom.T) geom.T {
	return mapCoords(g, SRIDWGS84, func(x, y float64) (float64, float64) {
		return FromMercator(x, y)
	})
}

// UnprojectRect converts a Web Mercator rectangle to WGS84. Mercator is
// axis-aligned and monotonic, so converting the two corners is exact.
func UnprojectRect(r Rect) Rect {
	minLng, minLat := FromMercator(r.MinX, r.MinY)
	maxLng, maxLat := FromMercator(r.MaxX, r.MaxY)
	return Rect{MinX: minLng, MinY: minLat, MaxX: maxLng, MaxY: maxLat}
}

func mapCoords(g geom.T, srid int, f func(x, y float64) (float64, float64)) geom.T {
	transform := func(flat []float64) []float64 {
		out := make([]float64, len(flat))
		for i := 0; i+1 < len(flat); i += 2 {
			out[i], out[i+1] = f(flat[i], flat[i+1])
		}
		return out
	}

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(geom.XY, transform(t.FlatCoords())).SetSRID(srid)
	case *geom.Polygon:
		return geom.NewPolygonFlat(geom.XY, transform(t.FlatCoords()), t.Ends()).SetSRID(srid)
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(geom.XY, transform(t.FlatCoords()), t.Endss()).SetSRID(srid)
	case *geom.LineString:
		return geom.NewLineStringFlat(geom.XY, transform(t.FlatCoords())).SetSRID(srid)
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(geom.XY, transform(t.FlatCoords()), t.Ends()).SetSRID(srid)
	default:
		return g
	}
}
