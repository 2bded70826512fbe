// Package geo provides the stateless geometry primitives shared by edge
// routing and layout: point math, arc-length traversal of polylines, and
// clipping of edge paths against node shape boundaries.
//
// All functions are pure. NaN inputs propagate as NaN without validation,
// matching the behavior of the math package they are built on.
package geo

import (
	"math"

	"github.com/loomviz/loom/pkg/errors"
)

// Point is a coordinate in the diagram plane.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned rectangle identified by its center point.
// Layout engines position nodes by center, so shape boundaries are
// expressed the same way.
type Rect struct {
	X      float64 // Center X
	Y      float64 // Center Y
	Width  float64
	Height float64
}

// MinX returns the left edge of the rectangle.
func (r Rect) MinX() float64 { return r.X - r.Width/2 }

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.Width/2 }

// MinY returns the top edge of the rectangle.
func (r Rect) MinY() float64 { return r.Y - r.Height/2 }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.Height/2 }

// Contains reports whether p lies inside the rectangle or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() && p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.MinX(), o.MinX())
	maxX := math.Max(r.MaxX(), o.MaxX())
	minY := math.Min(r.MinY(), o.MinY())
	maxY := math.Max(r.MaxY(), o.MaxY())
	return Rect{
		X:      (minX + maxX) / 2,
		Y:      (minY + maxY) / 2,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Grow returns a copy of r expanded by pad on every side.
func (r Rect) Grow(pad float64) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// Diamond is a four-vertex rhombus identified by its center point.
// The vertices sit at the midpoints of the bounding box edges.
type Diamond struct {
	X      float64 // Center X
	Y      float64 // Center Y
	Width  float64
	Height float64
}

// Vertices returns the four corners in order: right, bottom, left, top.
func (d Diamond) Vertices() [4]Point {
	return [4]Point{
		{X: d.X + d.Width/2, Y: d.Y},
		{X: d.X, Y: d.Y + d.Height/2},
		{X: d.X - d.Width/2, Y: d.Y},
		{X: d.X, Y: d.Y - d.Height/2},
	}
}

// Contains reports whether p lies inside the diamond or on its boundary.
func (d Diamond) Contains(p Point) bool {
	if d.Width <= 0 || d.Height <= 0 {
		return false
	}
	dx := math.Abs(p.X-d.X) / (d.Width / 2)
	dy := math.Abs(p.Y-d.Y) / (d.Height / 2)
	return dx+dy <= 1
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Lerp linearly interpolates between a and b. t=0 yields a, t=1 yields b.
func Lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// PathLength returns the total arc length of the polyline through points.
// Returns 0 for fewer than two points.
func PathLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// PointAlongPath walks the polyline formed by points and returns the
// coordinate at cumulative arc length d from the start.
//
// If d exceeds the total path length, the final point is returned. If
// points holds a single entry, that point is returned regardless of d.
// An empty path yields an INVALID_GEOMETRY error.
func PointAlongPath(points []Point, d float64) (Point, error) {
	if len(points) == 0 {
		return Point{}, errors.New(errors.ErrCodeInvalidGeometry, "point along path: empty path")
	}
	if len(points) == 1 {
		return points[0], nil
	}
	if d <= 0 {
		return points[0], nil
	}

	remaining := d
	for i := 1; i < len(points); i++ {
		seg := Distance(points[i-1], points[i])
		if remaining <= seg && seg > 0 {
			return Lerp(points[i-1], points[i], remaining/seg), nil
		}
		remaining -= seg
	}
	return points[len(points)-1], nil
}

// Reverse returns a new slice with the points in opposite order.
// Clip functions trim the tail of a path; reversing lets the same
// functions trim the head.
func Reverse(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
