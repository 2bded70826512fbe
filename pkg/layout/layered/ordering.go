package layered

import (
	"slices"
	"sort"

	"github.com/loomviz/loom/pkg/graph"
)

// orderLayers reduces edge crossings with barycenter sweeps: each node is
// repositioned to the average position of its neighbors in the adjacent
// layer, sweeping downward then upward, for at most passes iterations or
// until no sweep improves the crossing count. The best ordering seen is
// kept.
//
// Ties and neighbor-free nodes keep their current relative order, making
// the result deterministic for a given insertion order.
func orderLayers(g *graph.Graph, layers [][]string, passes int) {
	if len(layers) < 2 {
		return
	}

	best := cloneLayers(layers)
	bestCrossings := countAllCrossings(g, layers)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		// Downward: order each layer by parents in the layer above.
		for i := 1; i < len(layers); i++ {
			sortByBarycenter(layers[i], g.Parents, layers[i-1])
		}
		// Upward: order each layer by children in the layer below.
		for i := len(layers) - 2; i >= 0; i-- {
			sortByBarycenter(layers[i], g.Children, layers[i+1])
		}

		crossings := countAllCrossings(g, layers)
		if crossings < bestCrossings {
			bestCrossings = crossings
			best = cloneLayers(layers)
		} else {
			// No improvement; later passes would cycle through the
			// same orderings.
			break
		}
	}

	copyLayers(layers, best)
}

// sortByBarycenter reorders layer in place by the mean position of each
// node's neighbors in the adjacent layer. neighbors yields the adjacent
// node IDs for one node (parents or children depending on sweep
// direction).
func sortByBarycenter(layer []string, neighbors func(string) []string, adjacent []string) {
	adjPos := make(map[string]int, len(adjacent))
	for i, id := range adjacent {
		adjPos[id] = i
	}

	type keyed struct {
		id  string
		bc  float64
		pos int // current position, the tie-break
	}

	keys := make([]keyed, len(layer))
	for i, id := range layer {
		bc := float64(i) // neighbor-free nodes keep their position
		sum, count := 0, 0
		for _, nb := range neighbors(id) {
			if p, ok := adjPos[nb]; ok {
				sum += p
				count++
			}
		}
		if count > 0 {
			bc = float64(sum) / float64(count)
		}
		keys[i] = keyed{id: id, bc: bc, pos: i}
	}

	sort.SliceStable(keys, func(a, b int) bool { return keys[a].bc < keys[b].bc })

	for i, k := range keys {
		layer[i] = k.id
	}
}

func cloneLayers(layers [][]string) [][]string {
	out := make([][]string, len(layers))
	for i, l := range layers {
		out[i] = slices.Clone(l)
	}
	return out
}

func copyLayers(dst, src [][]string) {
	for i := range src {
		copy(dst[i], src[i])
	}
}
