package layered

import (
	"slices"

	"github.com/loomviz/loom/pkg/graph"
)

// countAllCrossings sums the edge crossings between each pair of adjacent
// layers for the given orderings.
func countAllCrossings(g *graph.Graph, layers [][]string) int {
	total := 0
	for i := 0; i+1 < len(layers); i++ {
		total += countLayerCrossings(g, layers[i], layers[i+1])
	}
	return total
}

// countLayerCrossings counts edge crossings between two adjacent layers
// using a Fenwick tree (binary indexed tree) for O(E log V) performance.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which is the number of inversions in the sequence of target positions
// when edges are sorted by source position.
func countLayerCrossings(g *graph.Graph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[string]int, len(lower))
	for i, id := range lower {
		lowerPos[id] = i
	}

	type edge struct{ upper, lower int }
	var edges []edge
	for i, id := range upper {
		for _, child := range g.Children(id) {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Count edges already seen whose target position <= this one;
		// the remainder cross this edge.
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
