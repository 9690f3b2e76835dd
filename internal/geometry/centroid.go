package geometry

import (
	"github.com/twpayne/go-geom"
)

// Centroid returns the centroid of a geometry. Polygons use the
// area-weighted (shoelace) centroid of the outer ring; multipolygons
// weight each member by area. Degenerate rings fall back to the bounding
// box center.
func Centroid(g geom.T) (x, y float64) {
	switch t := g.(type) {
	case *geom.Point:
		return t.X(), t.Y()
	case *geom.Polygon:
		return polygonCentroid(t)
	case *geom.MultiPolygon:
		var sx, sy, total float64
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			cx, cy := polygonCentroid(p)
			a := ringArea(p.LinearRing(0).FlatCoords())
			if a < 0 {
				a = -a
			}
			sx += cx * a
			sy += cy * a
			total += a
		}
		if total == 0 {
			return BoundsOf(g).Center()
		}
		return sx / total, sy / total
	default:
		return BoundsOf(g).Center()
	}
}

func polygonCentroid(p *geom.Polygon) (x, y float64) {
	if p.NumLinearRings() == 0 {
		return 0, 0
	}
	flat := p.LinearRing(0).FlatCoords()
	a := ringArea(flat)
	if a == 0 {
		return BoundsOf(p).Center()
	}

	var cx, cy float64
	for i := 0; i+3 < len(flat); i += 2 {
		x0, y0 := flat[i], flat[i+1]
		x1, y1 := flat[i+2], flat[i+3]
		w := x0*y1 - x1*y0
		cx += (x0 + x1) * w
		cy += (y0 + y1) * w
	}
	return cx / (6 * a), cy / (6 * a)
}

// ringArea returns the signed shoelace area of a closed ring given as flat
// XY coordinates.
func ringArea(flat []float64) float64 {
	var a float64
	for i := 0; i+3 < len(flat); i += 2 {
		a += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return a / 2
}
