package layered

import (
	"github.com/loomviz/loom/pkg/geo"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
)

// routeEdges computes a path for every edge: center to center, optionally
// smoothed, then clipped at both shape boundaries so the line visually
// stops at each node's border. Self-loops get a rectangular loop off the
// node's side instead.
func routeEdges(g *graph.Graph, opts layout.Options) {
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)

		if e.IsSelfLoop() {
			e.Points = selfLoopPath(src, opts)
			continue
		}

		path := []geo.Point{
			{X: src.X, Y: src.Y},
			{X: dst.X, Y: dst.Y},
		}

		// Multi-layer edges get a waypoint per skipped layer boundary so
		// curved interpolation has something to bend through.
		if span := dst.Layer - src.Layer; span > 1 || span < -1 {
			path = subdividePath(path, abs(span))
		}

		if opts.Curve == layout.CurveBasis && len(path) > 2 {
			path = smoothPath(path)
		}

		// Clip the head at the source boundary, the tail at the target's.
		path = geo.Reverse(geo.ClipperFor(src.Shape)(geo.Reverse(path), src.Box()))
		path = geo.ClipperFor(dst.Shape)(path, dst.Box())

		e.Points = path
	}
}

// subdividePath inserts count-1 evenly spaced waypoints between the two
// endpoints.
func subdividePath(path []geo.Point, count int) []geo.Point {
	a, b := path[0], path[len(path)-1]
	out := []geo.Point{a}
	for i := 1; i < count; i++ {
		out = append(out, geo.Lerp(a, b, float64(i)/float64(count)))
	}
	return append(out, b)
}

// smoothPath applies one corner-cutting pass (Chaikin) while keeping the
// endpoints fixed, approximating a basis-spline interpolation.
func smoothPath(path []geo.Point) []geo.Point {
	out := []geo.Point{path[0]}
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		out = append(out,
			geo.Lerp(a, b, 0.25),
			geo.Lerp(a, b, 0.75),
		)
	}
	return append(out, path[len(path)-1])
}

// selfLoopPath builds a small rectangular loop off the node's right side,
// with both endpoints on the boundary.
func selfLoopPath(n *graph.Node, opts layout.Options) []geo.Point {
	reach := opts.NodeSpacing / 2

	box := n.Box()
	return []geo.Point{
		{X: box.MaxX(), Y: n.Y - n.Height/4},
		{X: box.MaxX() + reach, Y: n.Y - n.Height/4},
		{X: box.MaxX() + reach, Y: n.Y + n.Height/4},
		{X: box.MaxX(), Y: n.Y + n.Height/4},
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
