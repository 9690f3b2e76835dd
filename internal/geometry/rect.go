// Package geometry provides planar geometry primitives shared by the grid
// aggregation core: axis-aligned rectangles, exact rectangle/polygon
// intersection tests, centroids, and Web Mercator projection.
package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Rect is an axis-aligned rectangle in a planar coordinate system.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewRect returns a rectangle with the given corners.
func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// BoundsOf returns the bounding rectangle of a geometry.
func BoundsOf(g geom.T) Rect {
	b := g.Bounds()
	return Rect{MinX: b.Min(0), MinY: b.Min(1), MaxX: b.Max(0), MaxY: b.Max(1)}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// IsEmpty reports whether the rectangle has zero or negative extent in
// either dimension.
func (r Rect) IsEmpty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}

// ContainsPoint reports whether the point lies inside or on the boundary
// of the rectangle.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether two rectangles overlap, boundary contact
// included.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX &&
		r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Pad returns the rectangle expanded by d on every edge.
func (r Rect) Pad(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Area returns the rectangle's area; zero for empty rectangles.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Polygon converts the rectangle to a closed go-geom polygon ring,
// counter-clockwise starting at the southwest corner.
func (r Rect) Polygon() *geom.Polygon {
	flat := []float64{
		r.MinX, r.MinY,
		r.MaxX, r.MinY,
		r.MaxX, r.MaxY,
		r.MinX, r.MaxY,
		r.MinX, r.MinY,
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// Corners returns the four corner coordinates in counter-clockwise order
// starting at the southwest corner.
func (r Rect) Corners() [4][2]float64 {
	return [4][2]float64{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MaxX, r.MaxY},
		{r.MinX, r.MaxY},
	}
}
