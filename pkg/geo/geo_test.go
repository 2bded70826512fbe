package geo

import (
	"math"
	"testing"

	"github.com/loomviz/loom/pkg/errors"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"SamePoint", Point{1, 1}, Point{1, 1}, 0},
		{"Horizontal", Point{0, 0}, Point{3, 0}, 3},
		{"Diagonal", Point{0, 0}, Point{3, 4}, 5},
		{"Negative", Point{-1, -1}, Point{2, 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceNaN(t *testing.T) {
	got := Distance(Point{math.NaN(), 0}, Point{1, 1})
	if !math.IsNaN(got) {
		t.Errorf("Distance with NaN input = %v, want NaN", got)
	}
}

func TestPointAlongPath(t *testing.T) {
	path := []Point{{0, 0}, {10, 0}, {10, 10}}

	tests := []struct {
		name string
		d    float64
		want Point
	}{
		{"Start", 0, Point{0, 0}},
		{"MidFirstSegment", 5, Point{5, 0}},
		{"Corner", 10, Point{10, 0}},
		{"MidSecondSegment", 15, Point{10, 5}},
		{"End", 20, Point{10, 10}},
		{"PastEnd", 100, Point{10, 10}},
		{"NegativeClampsToStart", -5, Point{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointAlongPath(path, tt.d)
			if err != nil {
				t.Fatalf("PointAlongPath error: %v", err)
			}
			if Distance(got, tt.want) > 1e-9 {
				t.Errorf("PointAlongPath(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestPointAlongPathDegenerate(t *testing.T) {
	// Single point is returned regardless of distance
	got, err := PointAlongPath([]Point{{3, 4}}, 99)
	if err != nil {
		t.Fatalf("single point: %v", err)
	}
	if got != (Point{3, 4}) {
		t.Errorf("single point = %v, want {3 4}", got)
	}

	// Empty path is an invalid-geometry error
	_, err = PointAlongPath(nil, 1)
	if !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("empty path error = %v, want INVALID_GEOMETRY", err)
	}
}

func TestPathLength(t *testing.T) {
	if got := PathLength([]Point{{0, 0}, {3, 4}, {3, 14}}); math.Abs(got-15) > 1e-9 {
		t.Errorf("PathLength = %v, want 15", got)
	}
	if got := PathLength([]Point{{1, 1}}); got != 0 {
		t.Errorf("PathLength single = %v, want 0", got)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 4, Height: 2}

	if r.MinX() != 8 || r.MaxX() != 12 || r.MinY() != 9 || r.MaxY() != 11 {
		t.Errorf("bounds = (%v %v %v %v)", r.MinX(), r.MaxX(), r.MinY(), r.MaxY())
	}
	if !r.Contains(Point{10, 10}) {
		t.Error("center should be contained")
	}
	if !r.Contains(Point{8, 9}) {
		t.Error("boundary corner should be contained")
	}
	if r.Contains(Point{7.9, 10}) {
		t.Error("outside point should not be contained")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 2, Height: 2}
	b := Rect{X: 10, Y: 0, Width: 2, Height: 2}
	u := a.Union(b)

	if u.MinX() != -1 || u.MaxX() != 11 || u.MinY() != -1 || u.MaxY() != 1 {
		t.Errorf("Union = %+v", u)
	}
}

func TestDiamondContains(t *testing.T) {
	d := Diamond{X: 0, Y: 0, Width: 10, Height: 10}

	if !d.Contains(Point{0, 0}) {
		t.Error("center should be contained")
	}
	if !d.Contains(Point{5, 0}) {
		t.Error("right vertex should be contained")
	}
	if d.Contains(Point{4, 4}) {
		t.Error("bounding-box corner lies outside the diamond")
	}
}

func TestReverse(t *testing.T) {
	in := []Point{{0, 0}, {1, 0}, {2, 0}}
	got := Reverse(in)
	if got[0] != (Point{2, 0}) || got[2] != (Point{0, 0}) {
		t.Errorf("Reverse = %v", got)
	}
	// input untouched
	if in[0] != (Point{0, 0}) {
		t.Error("Reverse must not mutate its input")
	}
}
