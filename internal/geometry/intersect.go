package geometry

import (
	"github.com/twpayne/go-geom"
)

// Intersects reports whether a geometry truly intersects the rectangle.
// This is the exact follow-up test to a bounding-box prefilter: it handles
// polygon vertices inside the rectangle, edge crossings, rectangles wholly
// contained in a polygon interior, and rectangles falling inside holes.
// Supported types are Point, Polygon, and MultiPolygon; other types report
// false.
func Intersects(g geom.T, r Rect) bool {
	switch t := g.(type) {
	case *geom.Point:
		return r.ContainsPoint(t.X(), t.Y())
	case *geom.Polygon:
		return polygonIntersectsRect(t, r)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonIntersectsRect(t.Polygon(i), r) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func polygonIntersectsRect(p *geom.Polygon, r Rect) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !BoundsOf(p).Intersects(r) {
		return false
	}

	// Any ring vertex inside the rectangle means the polygon boundary
	// reaches into it. Hole boundaries are part of the polygon.
	for i := 0; i < p.NumLinearRings(); i++ {
		flat := p.LinearRing(i).FlatCoords()
		for j := 0; j+1 < len(flat); j += 2 {
			if r.ContainsPoint(flat[j], flat[j+1]) {
				return true
			}
		}
	}

	// Any ring edge crossing a rectangle edge.
	corners := r.Corners()
	for i := 0; i < p.NumLinearRings(); i++ {
		flat := p.LinearRing(i).FlatCoords()
		for j := 0; j+3 < len(flat); j += 2 {
			ax, ay := flat[j], flat[j+1]
			bx, by := flat[j+2], flat[j+3]
			for k := 0; k < 4; k++ {
				c := corners[k]
				d := corners[(k+1)%4]
				if segmentsIntersect(ax, ay, bx, by, c[0], c[1], d[0], d[1]) {
					return true
				}
			}
		}
	}

	// No boundary contact: the rectangle is entirely inside the polygon
	// (possibly in a hole) or entirely outside. One interior point decides.
	cx, cy := r.Center()
	return pointInPolygon(p, cx, cy)
}

// pointInPolygon applies even-odd ray casting across all rings, so a point
// inside a hole counts as outside.
func pointInPolygon(p *geom.Polygon, x, y float64) bool {
	inside := false
	for i := 0; i < p.NumLinearRings(); i++ {
		flat := p.LinearRing(i).FlatCoords()
		for j := 0; j+3 < len(flat); j += 2 {
			ax, ay := flat[j], flat[j+1]
			bx, by := flat[j+2], flat[j+3]
			if (ay > y) != (by > y) {
				xCross := ax + (y-ay)/(by-ay)*(bx-ax)
				if x < xCross {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// segmentsIntersect reports whether segments AB and CD intersect, touching
// endpoints included.
func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear touches.
	if d1 == 0 && onSegment(cx, cy, dx, dy, ax, ay) {
		return true
	}
	if d2 == 0 && onSegment(cx, cy, dx, dy, bx, by) {
		return true
	}
	if d3 == 0 && onSegment(ax, ay, bx, by, cx, cy) {
		return true
	}
	if d4 == 0 && onSegment(ax, ay, bx, by, dx, dy) {
		return true
	}
	return false
}

// cross returns the orientation of point P relative to segment AB.
func cross(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// onSegment reports whether collinear point P lies within the bounding box
// of segment AB.
func onSegment(ax, ay, bx, by, px, py float64) bool {
	return min(ax, bx) <= px && px <= max(ax, bx) &&
		min(ay, by) <= py && py <= max(ay, by)
}
