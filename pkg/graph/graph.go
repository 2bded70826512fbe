// Package graph defines the normalized node/edge/cluster model every diagram
// type is translated into before layout, together with the ephemeral parent/
// children tree used for routing edges across nested clusters.
//
// A Graph is built fresh for every render call and discarded afterwards; the
// layout engine mutates it in place (positions, sizes, edge paths). It is not
// safe for concurrent use without external synchronization.
package graph

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/geo"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = stderrors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = stderrors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = stderrors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = stderrors.New("unknown target node")
)

// Direction is the primary flow direction of a layout.
type Direction string

// Layout directions.
const (
	TopDown   Direction = "TB"
	BottomUp  Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// LineStyle selects the stroke of an edge.
type LineStyle string

// Edge line styles.
const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineThick  LineStyle = "thick"
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode.
type Metadata map[string]any

// Node represents a diagram box, shape, or cluster.
//
// Width, Height, X, and Y are zero until the layout engine fills them in.
// X and Y refer to the node's center. The zero value is not usable; at
// minimum ID must be set before adding to a Graph.
type Node struct {
	ID       string   // Unique identifier
	Label    string   // Display text (defaults to ID when empty)
	ParentID string   // Owning cluster, empty for top-level nodes
	Shape    string   // Shape identifier consulted by the clip registry ("rect" when empty)
	Styles   []string // Arbitrary style tags passed through to renderers
	Meta     Metadata // Arbitrary key-value metadata (never nil after AddNode)

	// IsCluster marks nodes that visually contain other nodes.
	IsCluster bool

	// Layer is the rank assigned during layout (0 = first layer).
	Layer int

	// Geometry, populated by the layout engine.
	X, Y          float64
	Width, Height float64
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Box returns the node's bounding rectangle around its center.
func (n *Node) Box() geo.Rect {
	return geo.Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// Edge represents a directed or undirected connection between two nodes.
//
// Points is empty until the layout engine computes the routed path.
// Self-edges (From == To) are permitted and receive loop routing.
type Edge struct {
	ID         string
	From       string
	To         string
	Label      string
	ArrowStart string    // Arrowhead style tag at the source end
	ArrowEnd   string    // Arrowhead style tag at the target end
	Line       LineStyle // Defaults to LineSolid when empty
	MinLen     int       // Minimum number of layers the edge should span

	// Points is the routed polyline, filled in by the layout engine.
	Points []geo.Point

	// Reversed marks edges flipped during cycle breaking. Renderers must
	// draw them in their original direction.
	Reversed bool
}

// IsSelfLoop reports whether the edge connects a node to itself.
func (e *Edge) IsSelfLoop() bool { return e.From == e.To }

// Graph is the normalized diagram model consumed by layout engines.
//
// Nodes keep their insertion order, which layout algorithms use as the
// deterministic tie-break. The zero value is not usable; use New.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []*Edge
	outgoing map[string][]string
	incoming map[string][]string
	dir      Direction
	meta     Metadata
}

// New creates an empty Graph flowing in the given direction.
// An empty direction defaults to TopDown.
func New(dir Direction) *Graph {
	if dir == "" {
		dir = TopDown
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		dir:      dir,
		meta:     Metadata{},
	}
}

// Direction returns the graph's flow direction.
func (g *Graph) Direction() Direction { return g.dir }

// SetDirection updates the graph's flow direction.
func (g *Graph) SetDirection(dir Direction) { g.dir = dir }

// Meta returns the graph-level metadata map. Never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a
// node with the same ID already exists. The node's Meta field is
// initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds an edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing. An empty edge ID is assigned "from-to-index". An empty line
// style defaults to LineSolid.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s-%s-%d", e.From, e.To, len(g.edges))
	}
	if e.Line == "" {
		e.Line = LineSolid
	}
	edge := &e
	g.edges = append(g.edges, edge)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// ReverseEdge flips the direction of the edge from→to and marks it
// Reversed. The arrow tags swap along with the endpoints, so the drawn
// result still matches the author's intent after cycle breaking.
func (g *Graph) ReverseEdge(from, to string) {
	for _, e := range g.edges {
		if e.From == from && e.To == to && !e.Reversed {
			g.outgoing[from] = deleteFirst(g.outgoing[from], to)
			g.incoming[to] = deleteFirst(g.incoming[to], from)
			e.From, e.To = e.To, e.From
			e.ArrowStart, e.ArrowEnd = e.ArrowEnd, e.ArrowStart
			e.Reversed = true
			g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
			g.incoming[e.To] = append(g.incoming[e.To], e.From)
			return
		}
	}
}

func deleteFirst(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return slices.Delete(s, i, i+1)
		}
	}
	return s
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the actual node, so modifications affect the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
// The returned slice contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order.
// The returned slice contains pointers to the actual edge structs.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes this node has edges to.
// Read-only view; do not modify.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node.
// Read-only view; do not modify.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InsertionIndex returns the position at which the node was added, used as
// the deterministic tie-break in layout algorithms. Returns -1 for unknown
// IDs.
func (g *Graph) InsertionIndex(id string) int {
	return slices.Index(g.order, id)
}

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// ClusterMembers returns the IDs of nodes directly owned by the cluster,
// in insertion order.
func (g *Graph) ClusterMembers(clusterID string) []string {
	var members []string
	for _, id := range g.order {
		if g.nodes[id].ParentID == clusterID {
			members = append(members, id)
		}
	}
	return members
}

// Clone returns a deep copy of the graph. Metadata maps are copied
// shallowly (values are shared).
func (g *Graph) Clone() *Graph {
	out := New(g.dir)
	for _, id := range g.order {
		n := *g.nodes[id]
		n.Styles = slices.Clone(n.Styles)
		n.Meta = copyMeta(n.Meta)
		_ = out.AddNode(n)
	}
	for _, e := range g.edges {
		edge := *e
		edge.Points = slices.Clone(e.Points)
		_ = out.AddEdge(edge)
	}
	for k, v := range g.meta {
		out.meta[k] = v
	}
	return out
}

func copyMeta(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks the graph invariants and returns nil if all hold:
//
//  1. Every edge endpoint references an existing node (DANGLING_EDGE)
//  2. Every ParentID references an existing node (DANGLING_PARENT)
//  3. Every referenced parent is a cluster node (INVALID_GRAPH)
//  4. Parent links form a forest with no cycles (CYCLIC_PARENTAGE)
//
// Errors carry the structured codes from the errors package. Use this at
// the Normalizing stage before handing the graph to a layout engine.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %s references missing node %s", e.ID, e.From)
		}
		if _, ok := g.nodes[e.To]; !ok {
			return errors.New(errors.ErrCodeDanglingEdge, "edge %s references missing node %s", e.ID, e.To)
		}
	}

	for _, id := range g.order {
		n := g.nodes[id]
		if n.ParentID == "" {
			continue
		}
		parent, ok := g.nodes[n.ParentID]
		if !ok {
			return errors.New(errors.ErrCodeDanglingParent, "node %s references missing parent %s", id, n.ParentID)
		}
		if !parent.IsCluster {
			return errors.New(errors.ErrCodeInvalidGraph, "node %s has non-cluster parent %s", id, n.ParentID)
		}
	}

	return g.validateParentForest()
}

// validateParentForest walks every parent chain looking for cycles.
func (g *Graph) validateParentForest() error {
	for _, id := range g.order {
		seen := map[string]bool{}
		for curr := id; curr != ""; {
			if seen[curr] {
				return errors.New(errors.ErrCodeCyclicParentage, "parent cycle through node %s", curr)
			}
			seen[curr] = true
			n, ok := g.nodes[curr]
			if !ok {
				break
			}
			curr = n.ParentID
		}
	}
	return nil
}
