package geo

import (
	"math"
	"testing"
)

const tol = 1e-6

// onRectBoundary reports whether p lies on the boundary of r within tol.
func onRectBoundary(p Point, r Rect) bool {
	onVertical := (math.Abs(p.X-r.MinX()) < tol || math.Abs(p.X-r.MaxX()) < tol) &&
		p.Y >= r.MinY()-tol && p.Y <= r.MaxY()+tol
	onHorizontal := (math.Abs(p.Y-r.MinY()) < tol || math.Abs(p.Y-r.MaxY()) < tol) &&
		p.X >= r.MinX()-tol && p.X <= r.MaxX()+tol
	return onVertical || onHorizontal
}

func TestClipToRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name    string
		path    []Point
		wantEnd Point
	}{
		{
			name:    "StraightFromLeft",
			path:    []Point{{-20, 0}, {0, 0}},
			wantEnd: Point{-5, 0},
		},
		{
			name:    "StraightFromAbove",
			path:    []Point{{0, -20}, {0, 0}},
			wantEnd: Point{0, -5},
		},
		{
			name:    "DiagonalIntoCorner",
			path:    []Point{{-20, -20}, {0, 0}},
			wantEnd: Point{-5, -5},
		},
		{
			name:    "MultiSegment",
			path:    []Point{{-20, 30}, {-20, 0}, {0, 0}},
			wantEnd: Point{-5, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipToRect(tt.path, r)
			end := got[len(got)-1]
			if Distance(end, tt.wantEnd) > tol {
				t.Errorf("endpoint = %v, want %v", end, tt.wantEnd)
			}
			if !onRectBoundary(end, r) {
				t.Errorf("endpoint %v not on rectangle boundary", end)
			}
		})
	}
}

func TestClipToRectNoIntersection(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	path := []Point{{20, 20}, {30, 20}}

	got := ClipToRect(path, r)
	if len(got) != 2 || got[1] != path[1] {
		t.Errorf("path clear of the rect should be unchanged, got %v", got)
	}
}

func TestClipToRectPathStartsInside(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	// both endpoints inside the rectangle: no boundary crossing exists,
	// so the path is kept as-is
	path := []Point{{X: -1, Y: -1}, {X: 2, Y: 2}}
	got := ClipToRect(path, r)
	if len(got) != 2 || got[1] != path[1] {
		t.Errorf("interior path should be kept unchanged, got %v", got)
	}
}

func TestClipToRectShortPath(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	single := []Point{{1, 1}}
	if got := ClipToRect(single, r); len(got) != 1 {
		t.Errorf("single-point path should pass through, got %v", got)
	}
	if got := ClipToRect(nil, r); got != nil {
		t.Errorf("nil path should pass through, got %v", got)
	}
}

func TestClipToDiamond(t *testing.T) {
	d := Diamond{X: 0, Y: 0, Width: 10, Height: 10}

	tests := []struct {
		name    string
		path    []Point
		wantEnd Point
	}{
		{
			name:    "StraightFromLeft",
			path:    []Point{{-20, 0}, {0, 0}},
			wantEnd: Point{-5, 0},
		},
		{
			name:    "StraightFromBelow",
			path:    []Point{{0, 20}, {0, 0}},
			wantEnd: Point{0, 5},
		},
		{
			// Approaching the center diagonally crosses the edge between
			// the left and top vertices at its midpoint.
			name:    "Diagonal",
			path:    []Point{{-20, -20}, {0, 0}},
			wantEnd: Point{-2.5, -2.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipToDiamond(tt.path, d)
			end := got[len(got)-1]
			if Distance(end, tt.wantEnd) > tol {
				t.Errorf("endpoint = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestClipHeadViaReverse(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	path := []Point{{0, 0}, {20, 0}} // starts inside the rect

	clipped := Reverse(ClipToRect(Reverse(path), r))
	if Distance(clipped[0], Point{5, 0}) > tol {
		t.Errorf("head = %v, want {5 0}", clipped[0])
	}
}

func TestClipperRegistry(t *testing.T) {
	box := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	path := []Point{{-20, -20}, {0, 0}}

	// rect family and unknown shapes share the rectangular clipper
	for _, shape := range []string{"rect", "rounded", "stadium", "", "hexagon-ish"} {
		got := ClipperFor(shape)(path, box)
		if end := got[len(got)-1]; Distance(end, Point{-5, -5}) > tol {
			t.Errorf("shape %q endpoint = %v, want {-5 -5}", shape, end)
		}
	}

	// diamond uses the inscribed rhombus
	got := ClipperFor("diamond")(path, box)
	if end := got[len(got)-1]; Distance(end, Point{-2.5, -2.5}) > tol {
		t.Errorf("diamond endpoint = %v, want {-2.5 -2.5}", end)
	}
}

func TestRegisterClipperOverride(t *testing.T) {
	marker := Point{99, 99}
	RegisterClipper("custom", func(path []Point, box Rect) []Point {
		return append(path[:len(path)-1:len(path)-1], marker)
	})
	defer RegisterClipper("custom", ClipToRect)

	got := ClipperFor("custom")([]Point{{0, 0}, {1, 1}}, Rect{})
	if got[len(got)-1] != marker {
		t.Errorf("custom clipper not used, got %v", got)
	}
}
