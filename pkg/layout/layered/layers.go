package layered

import "github.com/loomviz/loom/pkg/graph"

// layerEdge is a constraint edge with its effective minimum span.
type layerEdge struct {
	to   string
	span int
}

// assignLayers partitions placeable nodes into layers using a
// longest-path algorithm via topological sort (Kahn's algorithm).
// Each node lands at the maximum of (parent layer + edge span) over its
// parents, so that:
//   - Source nodes (no incoming constraint edges) are at layer 0
//   - For every constraint edge, layer(target) > layer(source)
//   - An edge's MinLen hint widens its span beyond the default 1
//
// Cycles must have been broken beforehand; existing layer values are
// overwritten. Results are stored on each node's Layer field.
func assignLayers(g *graph.Graph) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	out := make(map[string][]layerEdge, len(nodes))
	layers := make(map[string]int, len(nodes))

	for _, e := range g.Edges() {
		if !constraintEdge(g, e) {
			continue
		}
		span := 1
		if e.MinLen > 1 {
			span = e.MinLen
		}
		out[e.From] = append(out[e.From], layerEdge{to: e.To, span: span})
		inDegree[e.To]++
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if placeable(n) && inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, e := range out[curr] {
			if layer := layers[curr] + e.span; layer > layers[e.to] {
				layers[e.to] = layer
			}
			inDegree[e.to]--
			if inDegree[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	for _, n := range nodes {
		if placeable(n) {
			n.Layer = layers[n.ID]
		}
	}
}

// buildLayers groups placeable node IDs by layer, each layer in insertion
// order. The outer slice is indexed by layer and has no gaps: empty
// intermediate layers are preserved as empty slices.
func buildLayers(g *graph.Graph) [][]string {
	maxLayer := -1
	for _, n := range g.Nodes() {
		if placeable(n) && n.Layer > maxLayer {
			maxLayer = n.Layer
		}
	}
	if maxLayer < 0 {
		return nil
	}

	layers := make([][]string, maxLayer+1)
	for _, n := range g.Nodes() {
		if placeable(n) {
			layers[n.Layer] = append(layers[n.Layer], n.ID)
		}
	}
	return layers
}
