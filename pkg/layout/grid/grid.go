// Package grid implements a coarse grid layout. Nodes are placed on a
// uniform grid by breadth-first distance from the graph sources, and edges
// are routed as L-shaped orthogonal paths. It trades the layered engine's
// crossing minimization for predictable, compact output on small graphs.
package grid

import (
	"math"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/geo"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return layout.AlgoGrid }

func (e *Engine) Layout(g *graph.Graph, tree *graph.Tree, opts layout.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if tree == nil {
		tree = graph.NewTree(g)
	}
	for _, edge := range g.Edges() {
		if _, ok := g.Node(edge.From); !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %q references unknown source %q", edge.ID, edge.From)
		}
		if _, ok := g.Node(edge.To); !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %q references unknown target %q", edge.ID, edge.To)
		}
	}

	dir := opts.EffectiveDirection(g)
	cellW, cellH := measure(g, opts)
	place(g, dir, cellW, cellH)
	sizeClusters(g, tree, opts)
	route(g, dir, opts)
	return nil
}

// measure sizes every placeable node and returns the grid cell dimensions,
// which fit the largest node plus spacing.
func measure(g *graph.Graph, opts layout.Options) (float64, float64) {
	cellW, cellH := float64(layout.DefaultNodeSpacing), float64(layout.DefaultNodeSpacing)
	for _, n := range g.Nodes() {
		if n.IsCluster {
			continue
		}
		size := opts.Measurer.Measure(n.DisplayLabel(), opts.Font)
		n.Width = math.Max(n.Width, math.Max(size.Width+16, 40))
		n.Height = math.Max(n.Height, math.Max(size.Height+10, 28))
		cellW = math.Max(cellW, n.Width+opts.NodeSpacing)
		cellH = math.Max(cellH, n.Height+opts.LayerSpacing)
	}
	return cellW, cellH
}

// place walks the graph breadth-first from its sources and assigns each
// node a grid cell. The BFS depth picks the row and arrival order picks
// the column, so siblings spread sideways and chains grow along the flow
// direction. Nodes unreachable from any source seed new BFS waves in
// insertion order, which also covers fully cyclic graphs.
func place(g *graph.Graph, dir graph.Direction, cellW, cellH float64) {
	depth := map[string]int{}
	var frontier []string

	enqueue := func(id string, d int) {
		if _, seen := depth[id]; seen {
			return
		}
		depth[id] = d
		frontier = append(frontier, id)
	}

	for _, n := range g.Sources() {
		if !n.IsCluster {
			enqueue(n.ID, 0)
		}
	}
	pending := []string{}
	for _, n := range g.Nodes() {
		if !n.IsCluster {
			pending = append(pending, n.ID)
		}
	}

	cols := map[int]int{}
	for len(depth) < len(pending) || len(frontier) > 0 {
		if len(frontier) == 0 {
			for _, id := range pending {
				if _, seen := depth[id]; !seen {
					enqueue(id, 0)
					break
				}
			}
		}
		id := frontier[0]
		frontier = frontier[1:]

		d := depth[id]
		col := cols[d]
		cols[d]++

		n, _ := g.Node(id)
		setCell(n, dir, d, col, cellW, cellH)

		for _, child := range g.Children(id) {
			if c, _ := g.Node(child); c != nil && !c.IsCluster {
				enqueue(child, d+1)
			}
		}
	}
}

// setCell maps a (depth, column) cell into drawing coordinates honoring
// the flow direction.
func setCell(n *graph.Node, dir graph.Direction, depth, col int, cellW, cellH float64) {
	major := float64(depth)
	minor := float64(col)
	switch dir {
	case graph.LeftRight:
		n.X, n.Y = major*cellW, minor*cellH
	case graph.RightLeft:
		n.X, n.Y = -major*cellW, minor*cellH
	case graph.BottomUp:
		n.X, n.Y = minor*cellW, -major*cellH
	default:
		n.X, n.Y = minor*cellW, major*cellH
	}
}

func sizeClusters(g *graph.Graph, tree *graph.Tree, opts layout.Options) {
	clusters := []*graph.Node{}
	for _, n := range g.Nodes() {
		if n.IsCluster {
			clusters = append(clusters, n)
		}
	}
	// deepest first so nested clusters are sized before their parents
	for i := 1; i < len(clusters); i++ {
		for j := i; j > 0 && len(tree.Ancestry(clusters[j].ID)) > len(tree.Ancestry(clusters[j-1].ID)); j-- {
			clusters[j], clusters[j-1] = clusters[j-1], clusters[j]
		}
	}
	for _, c := range clusters {
		var box geo.Rect
		first := true
		for _, id := range g.ClusterMembers(c.ID) {
			m, _ := g.Node(id)
			if m == nil || (m.Width == 0 && m.Height == 0) {
				continue
			}
			if first {
				box = m.Box()
				first = false
			} else {
				box = box.Union(m.Box())
			}
		}
		if first {
			continue
		}
		box = box.Grow(opts.ClusterPadding)
		// the label band at the top needs room for one line of text
		if extra := opts.ClusterTopInset() - opts.ClusterPadding; extra > 0 {
			box.Y -= extra / 2
			box.Height += extra
		}
		c.X, c.Y, c.Width, c.Height = box.X, box.Y, box.Width, box.Height
	}
}

// route draws each edge as an L-shaped orthogonal path bending at the
// target's major coordinate, then clips both ends to the node shapes.
func route(g *graph.Graph, dir graph.Direction, opts layout.Options) {
	horizontal := dir == graph.LeftRight || dir == graph.RightLeft
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)

		if e.IsSelfLoop() {
			e.Points = selfLoopPath(src, opts)
			continue
		}

		a := geo.Point{X: src.X, Y: src.Y}
		b := geo.Point{X: dst.X, Y: dst.Y}
		path := []geo.Point{a}
		if a.X != b.X && a.Y != b.Y {
			if horizontal {
				path = append(path, geo.Point{X: b.X, Y: a.Y})
			} else {
				path = append(path, geo.Point{X: a.X, Y: b.Y})
			}
		}
		path = append(path, b)

		path = geo.Reverse(geo.ClipperFor(src.Shape)(geo.Reverse(path), src.Box()))
		path = geo.ClipperFor(dst.Shape)(path, dst.Box())
		e.Points = path
	}
}

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

var _ layout.Engine = (*Engine)(nil)
