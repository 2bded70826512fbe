package geo

import (
	"math"
	"sync"
)

// Clipper trims a polyline so it terminates on the boundary of the shape
// occupying box, rather than penetrating its interior. The path is expected
// to approach the shape from outside; points from the first boundary
// crossing onward are discarded and replaced by the intersection point.
//
// A path that never enters the shape is returned unchanged. Clippers trim
// the tail of the path; use [Reverse] to trim the head.
type Clipper func(path []Point, box Rect) []Point

// ClipToRect trims path at the boundary of the axis-aligned rectangle r.
func ClipToRect(path []Point, r Rect) []Point {
	if len(path) < 2 {
		return path
	}

	out := make([]Point, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path); i++ {
		p := path[i]
		if !r.Contains(p) {
			out = append(out, p)
			continue
		}
		prev := out[len(out)-1]
		if hit, ok := rectIntersection(prev, p, r); ok {
			out = append(out, hit)
		} else {
			// segment never crosses the boundary (path starts inside);
			// keep the point unchanged
			out = append(out, p)
		}
		return out
	}
	return out
}

// ClipToDiamond trims path at the boundary of the diamond d. The segment
// entering the diamond is intersected against each of the four diamond
// edges and the intersection nearest the outside point wins.
func ClipToDiamond(path []Point, d Diamond) []Point {
	if len(path) < 2 {
		return path
	}

	out := make([]Point, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path); i++ {
		p := path[i]
		if !d.Contains(p) {
			out = append(out, p)
			continue
		}
		prev := out[len(out)-1]
		if hit, ok := diamondIntersection(prev, p, d); ok {
			out = append(out, hit)
		} else {
			// segment never crosses the boundary (path starts inside);
			// keep the point unchanged
			out = append(out, p)
		}
		return out
	}
	return out
}

// rectIntersection returns the intersection of segment a→b with the
// boundary of r that lies nearest to a.
func rectIntersection(a, b Point, r Rect) (Point, bool) {
	corners := [4]Point{
		{X: r.MinX(), Y: r.MinY()},
		{X: r.MaxX(), Y: r.MinY()},
		{X: r.MaxX(), Y: r.MaxY()},
		{X: r.MinX(), Y: r.MaxY()},
	}
	return polygonIntersection(a, b, corners[:])
}

// diamondIntersection returns the intersection of segment a→b with the
// boundary of d that lies nearest to a.
func diamondIntersection(a, b Point, d Diamond) (Point, bool) {
	v := d.Vertices()
	return polygonIntersection(a, b, v[:])
}

// polygonIntersection intersects segment a→b against every edge of the
// closed polygon and returns the hit nearest to a.
func polygonIntersection(a, b Point, poly []Point) (Point, bool) {
	best := Point{}
	bestDist := math.Inf(1)
	found := false

	for i := range poly {
		p1 := poly[i]
		p2 := poly[(i+1)%len(poly)]
		hit, ok := segmentIntersection(a, b, p1, p2)
		if !ok {
			continue
		}
		if dist := Distance(a, hit); dist < bestDist {
			best = hit
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// segmentIntersection returns the intersection point of segments p1→p2 and
// p3→p4, if the segments cross.
func segmentIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y

	denom := d1x*d2y - d1y*d2x
	if denom == 0 {
		return Point{}, false // parallel or degenerate
	}

	t := ((p3.X-p1.X)*d2y - (p3.Y-p1.Y)*d2x) / denom
	u := ((p3.X-p1.X)*d1y - (p3.Y-p1.Y)*d1x) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{X: p1.X + t*d1x, Y: p1.Y + t*d1y}, true
}

// =============================================================================
// Shape → Clipper registry
// =============================================================================

// diamondClipper adapts ClipToDiamond to the Clipper signature with the
// diamond inscribed in the node's bounding box.
func diamondClipper(path []Point, box Rect) []Point {
	return ClipToDiamond(path, Diamond{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height})
}

var (
	clippersMu sync.RWMutex
	clippers   = map[string]Clipper{
		"rect":    ClipToRect,
		"rounded": ClipToRect,
		"stadium": ClipToRect,
		"diamond": diamondClipper,
	}
)

// RegisterClipper associates a shape identifier with a clip function.
// Re-registering an existing shape overwrites it. Registration is expected
// at startup but is safe at any time.
func RegisterClipper(shape string, c Clipper) {
	clippersMu.Lock()
	defer clippersMu.Unlock()
	if c != nil {
		clippers[shape] = c
	}
}

// ClipperFor returns the clip function registered for the shape.
// Unknown shapes (including the empty string) fall back to the
// rectangular clipper, which is correct for every box-like shape.
func ClipperFor(shape string) Clipper {
	clippersMu.RLock()
	defer clippersMu.RUnlock()
	if c, ok := clippers[shape]; ok {
		return c
	}
	return ClipToRect
}
