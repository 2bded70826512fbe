package layered

import (
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/layout"
)

// assignCoordinates turns layer assignments and within-layer orderings
// into center positions on every placeable node.
//
// Positions are computed in flow space, where the major axis follows the
// layer progression and the minor axis runs across a layer, then mapped
// to X/Y according to the direction. Each layer is centered on the minor
// axis, so the drawing grows symmetrically. Coordinates may be negative;
// renderers derive their own viewport from the resulting bounds.
func assignCoordinates(g *graph.Graph, layers [][]string, opts layout.Options) {
	dir := opts.EffectiveDirection(g)

	major := func(n *graph.Node) float64 {
		if dir == graph.LeftRight || dir == graph.RightLeft {
			return n.Width
		}
		return n.Height
	}
	minor := func(n *graph.Node) float64 {
		if dir == graph.LeftRight || dir == graph.RightLeft {
			return n.Height
		}
		return n.Width
	}

	// Major axis: proportional to layer index plus the thickest node in
	// each preceding layer and the configured layer spacing.
	majorCenters := make([]float64, len(layers))
	offset := 0.0
	for i, layer := range layers {
		thickest := 0.0
		for _, id := range layer {
			if n, ok := g.Node(id); ok && major(n) > thickest {
				thickest = major(n)
			}
		}
		majorCenters[i] = offset + thickest/2
		offset += thickest + opts.LayerSpacing
	}

	for i, layer := range layers {
		// Minor axis: sequential placement, centered per layer.
		width := 0.0
		for _, id := range layer {
			n, _ := g.Node(id)
			width += minor(n)
		}
		if len(layer) > 1 {
			width += float64(len(layer)-1) * opts.NodeSpacing
		}

		cursor := -width / 2
		for _, id := range layer {
			n, _ := g.Node(id)
			minorCenter := cursor + minor(n)/2
			cursor += minor(n) + opts.NodeSpacing

			switch dir {
			case graph.LeftRight:
				n.X, n.Y = majorCenters[i], minorCenter
			case graph.RightLeft:
				n.X, n.Y = -majorCenters[i], minorCenter
			case graph.BottomUp:
				n.X, n.Y = minorCenter, -majorCenters[i]
			default: // TopDown
				n.X, n.Y = minorCenter, majorCenters[i]
			}
		}
	}
}

// sizeClusters gives every cluster a bounding box large enough to contain
// all descendant boxes plus padding. Clusters are processed deepest
// first, so nested cluster boxes are already final when their parent is
// sized. A cluster with no placed descendants keeps zero geometry.
func sizeClusters(g *graph.Graph, tree *graph.Tree, opts layout.Options) {
	clusters := clustersByDepth(g, tree)

	for _, c := range clusters {
		first := true
		var box = c.Box()
		for _, childID := range tree.Children(c.ID) {
			child, ok := g.Node(childID)
			if !ok || (child.Width == 0 && child.Height == 0) {
				continue
			}
			if first {
				box = child.Box()
				first = false
				continue
			}
			box = box.Union(child.Box())
		}
		if first {
			continue // empty cluster
		}
		box = box.Grow(opts.ClusterPadding)
		// the label band at the top needs room for one line of text
		if extra := opts.ClusterTopInset() - opts.ClusterPadding; extra > 0 {
			box.Y -= extra / 2
			box.Height += extra
		}
		c.X, c.Y = box.X, box.Y
		c.Width, c.Height = box.Width, box.Height
	}
}

// clustersByDepth returns cluster nodes ordered deepest first.
func clustersByDepth(g *graph.Graph, tree *graph.Tree) []*graph.Node {
	var clusters []*graph.Node
	for _, n := range g.Nodes() {
		if n.IsCluster {
			clusters = append(clusters, n)
		}
	}
	// insertion sort by descending depth keeps this dependency-free and
	// stable for equal depths
	depth := func(n *graph.Node) int { return len(tree.Ancestry(n.ID)) }
	for i := 1; i < len(clusters); i++ {
		for j := i; j > 0 && depth(clusters[j]) > depth(clusters[j-1]); j-- {
			clusters[j], clusters[j-1] = clusters[j-1], clusters[j]
		}
	}
	return clusters
}
