package layered

import "github.com/loomviz/loom/pkg/graph"

// breakCycles makes the constraint graph acyclic by reversing back edges
// found during a depth-first traversal, and returns how many edges were
// reversed. Reversed edges keep rendering in their original direction via
// the edge's Reversed flag.
//
// Determinism: roots and children are visited in insertion order, so the
// back edge chosen for reversal is always the one whose source was
// inserted later, which is exactly the edge discovered while its target
// is still on the DFS stack.
func breakCycles(g *graph.Graph) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())

	// adjacency restricted to constraint edges
	children := make(map[string][]string)
	for _, e := range g.Edges() {
		if constraintEdge(g, e) {
			children[e.From] = append(children[e.From], e.To)
		}
	}

	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range children[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if placeable(n) && color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if placeable(n) && color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.ReverseEdge(e[0], e[1])
	}
	return len(backEdges)
}
