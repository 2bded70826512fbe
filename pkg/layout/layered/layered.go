// Package layered implements the reference hierarchical layout engine.
//
// The algorithm follows the classic layered (Sugiyama-style) phases:
//
//  1. Break directed cycles by reversing back edges
//  2. Partition nodes into layers (longest-path via topological sort)
//  3. Order nodes within layers to reduce crossings (barycenter sweeps)
//  4. Assign coordinates from layer index and within-layer order
//  5. Size clusters around their members
//  6. Route edge paths, clipped to shape boundaries
//
// Phases run strictly in order; each consumes the previous phase's output.
// Cluster nodes are positioned from their members, never layered
// themselves; edges touching a cluster are routed to the cluster's
// computed box.
package layered

import (
	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
)

// Engine is the layered layout engine. The zero value is not usable; use
// New. Engines hold no per-call state and are safe for concurrent use as
// long as each call owns its graph.
type Engine struct{}

// New creates a layered layout engine.
func New() *Engine { return &Engine{} }

// Name implements layout.Engine.
func (e *Engine) Name() string { return layout.AlgoLayered }

// Layout implements layout.Engine. It mutates g in place: every node gets
// a position and size, every edge a routed path.
//
// An edge referencing a missing node is a fatal DANGLING_EDGE error; the
// engine never drops edges silently.
func (e *Engine) Layout(g *graph.Graph, tree *graph.Tree, opts layout.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if tree == nil {
		tree = graph.NewTree(g)
	}

	for _, edge := range g.Edges() {
		if _, ok := g.Node(edge.From); !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %s references missing node %s", edge.ID, edge.From)
		}
		if _, ok := g.Node(edge.To); !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %s references missing node %s", edge.ID, edge.To)
		}
	}

	measureNodes(g, opts)

	reversed := breakCycles(g)
	if reversed > 0 {
		opts.Logger.Debug("broke cycles", "reversed_edges", reversed)
	}

	assignLayers(g)

	layers := buildLayers(g)
	orderLayers(g, layers, opts.OrderingPasses)

	assignCoordinates(g, layers, opts)
	sizeClusters(g, tree, opts)
	routeEdges(g, opts)

	return nil
}

// measureNodes fills in minimum sizes for every non-cluster node from its
// label. Pre-set dimensions are kept when they exceed the measured
// minimum, so callers can size nodes externally.
func measureNodes(g *graph.Graph, opts layout.Options) {
	const (
		padX      = 16.0
		padY      = 10.0
		minWidth  = 40.0
		minHeight = 28.0
	)

	for _, n := range g.Nodes() {
		if n.IsCluster {
			continue
		}
		size := opts.Measurer.Measure(n.DisplayLabel(), opts.Font)
		if w := size.Width + 2*padX; w > n.Width {
			n.Width = w
		}
		if h := size.Height + 2*padY; h > n.Height {
			n.Height = h
		}
		if n.Width < minWidth {
			n.Width = minWidth
		}
		if n.Height < minHeight {
			n.Height = minHeight
		}
	}
}

// placeable reports whether the node participates in layering and
// coordinate assignment. Clusters get their geometry from their members.
func placeable(n *graph.Node) bool { return !n.IsCluster }

// constraintEdge reports whether the edge constrains layering: both
// endpoints placeable and not a self-loop.
func constraintEdge(g *graph.Graph, e *graph.Edge) bool {
	if e.IsSelfLoop() {
		return false
	}
	from, _ := g.Node(e.From)
	to, _ := g.Node(e.To)
	return placeable(from) && placeable(to)
}
