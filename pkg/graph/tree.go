package graph

// RootID is the sentinel returned by ancestry lookups when two nodes share
// no common cluster, and by Parent for top-level nodes.
const RootID = "root"

// Tree is the ephemeral parent/children lookup built once per layout pass
// from the node set's ParentID fields. It is used for routing edges across
// nested clusters and for accumulating cluster offsets; it is never
// persisted and never shared between render calls.
type Tree struct {
	parent   map[string]string
	children map[string][]string
}

// NewTree builds the parent/children maps from the graph's cluster
// parentage. A node without a ParentID has no entry in the parent map and
// is treated as a root. Children keep the graph's insertion order.
func NewTree(g *Graph) *Tree {
	t := &Tree{
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
	for _, n := range g.Nodes() {
		if n.ParentID == "" {
			continue
		}
		t.parent[n.ID] = n.ParentID
		t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
	}
	return t
}

// Parent returns the cluster owning the node, or RootID for top-level
// nodes and unknown IDs.
func (t *Tree) Parent(id string) string {
	if p, ok := t.parent[id]; ok {
		return p
	}
	return RootID
}

// Children returns the IDs directly owned by the cluster, in insertion
// order. Read-only view; do not modify.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Ancestry returns the chain of enclosing clusters for the node, outermost
// first, excluding the node itself and the root sentinel. Top-level nodes
// yield an empty chain.
func (t *Tree) Ancestry(id string) []string {
	var chain []string
	for curr, ok := t.parent[id]; ok; curr, ok = t.parent[curr] {
		chain = append([]string{curr}, chain...)
	}
	return chain
}

// CommonAncestor returns the lowest common ancestor of two node IDs, or
// RootID if the nodes share no cluster.
//
// Two deliberate policies, relied on by edge routing:
//
//   - Equal IDs return the node's own parent, not the node itself.
//   - An ID absent from the parent map is treated as a root; no error is
//     raised for unknown nodes.
func (t *Tree) CommonAncestor(a, b string) string {
	if a == b {
		return t.Parent(a)
	}

	visited := map[string]bool{a: true}
	for curr, ok := t.parent[a]; ok; curr, ok = t.parent[curr] {
		visited[curr] = true
	}

	for curr := b; ; {
		if visited[curr] {
			return curr
		}
		p, ok := t.parent[curr]
		if !ok {
			return RootID
		}
		curr = p
	}
}
