package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/loomviz/loom/pkg/geo"
)

// =============================================================================
// Doc - Graph Serialization
// =============================================================================

// Doc is the canonical serialization format for diagram graphs.
// Used for API requests and responses, storage, caching, and
// cross-tool compatibility.
//
// The format is designed for round-trip fidelity: import → layout → export
// → re-import produces identical results, including computed geometry.
type Doc struct {
	Direction string    `json:"direction,omitempty" bson:"direction,omitempty"`
	Nodes     []NodeDoc `json:"nodes" bson:"nodes"`
	Edges     []EdgeDoc `json:"edges" bson:"edges"`
}

// NodeDoc is the serialized form of a Node.
type NodeDoc struct {
	ID      string         `json:"id" bson:"id"`
	Label   string         `json:"label,omitempty" bson:"label,omitempty"`
	Parent  string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Shape   string         `json:"shape,omitempty" bson:"shape,omitempty"`
	Cluster bool           `json:"cluster,omitempty" bson:"cluster,omitempty"`
	Styles  []string       `json:"styles,omitempty" bson:"styles,omitempty"`
	Layer   int            `json:"layer,omitempty" bson:"layer,omitempty"`
	X       float64        `json:"x,omitempty" bson:"x,omitempty"`
	Y       float64        `json:"y,omitempty" bson:"y,omitempty"`
	Width   float64        `json:"width,omitempty" bson:"width,omitempty"`
	Height  float64        `json:"height,omitempty" bson:"height,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// EdgeDoc is the serialized form of an Edge.
type EdgeDoc struct {
	ID         string      `json:"id,omitempty" bson:"id,omitempty"`
	From       string      `json:"from" bson:"from"`
	To         string      `json:"to" bson:"to"`
	Label      string      `json:"label,omitempty" bson:"label,omitempty"`
	ArrowStart string      `json:"arrow_start,omitempty" bson:"arrow_start,omitempty"`
	ArrowEnd   string      `json:"arrow_end,omitempty" bson:"arrow_end,omitempty"`
	Line       string      `json:"line,omitempty" bson:"line,omitempty"`
	MinLen     int         `json:"min_len,omitempty" bson:"min_len,omitempty"`
	Points     []geo.Point `json:"points,omitempty" bson:"points,omitempty"`
	Reversed   bool        `json:"reversed,omitempty" bson:"reversed,omitempty"`
}

// ToDoc converts a Graph to its serialization format.
// Nodes and edges keep their insertion order for deterministic output.
func ToDoc(g *Graph) Doc {
	doc := Doc{
		Direction: string(g.Direction()),
		Nodes:     make([]NodeDoc, 0, g.NodeCount()),
		Edges:     make([]EdgeDoc, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:      n.ID,
			Label:   n.Label,
			Parent:  n.ParentID,
			Shape:   n.Shape,
			Cluster: n.IsCluster,
			Styles:  slices.Clone(n.Styles),
			Layer:   n.Layer,
			X:       n.X,
			Y:       n.Y,
			Width:   n.Width,
			Height:  n.Height,
			Meta:    copyMeta(n.Meta),
		})
	}

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeDoc{
			ID:         e.ID,
			From:       e.From,
			To:         e.To,
			Label:      e.Label,
			ArrowStart: e.ArrowStart,
			ArrowEnd:   e.ArrowEnd,
			Line:       string(e.Line),
			MinLen:     e.MinLen,
			Points:     slices.Clone(e.Points),
			Reversed:   e.Reversed,
		})
	}

	return doc
}

// FromDoc converts a Doc back into a Graph.
// Returns an error if the document violates the model's construction
// rules (empty or duplicate IDs, edges to missing nodes).
func FromDoc(doc Doc) (*Graph, error) {
	g := New(Direction(doc.Direction))

	for _, nd := range doc.Nodes {
		n := Node{
			ID:        nd.ID,
			Label:     nd.Label,
			ParentID:  nd.Parent,
			Shape:     nd.Shape,
			IsCluster: nd.Cluster,
			Styles:    slices.Clone(nd.Styles),
			Layer:     nd.Layer,
			X:         nd.X,
			Y:         nd.Y,
			Width:     nd.Width,
			Height:    nd.Height,
			Meta:      nd.Meta,
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nd.ID, err)
		}
	}

	for _, ed := range doc.Edges {
		e := Edge{
			ID:         ed.ID,
			From:       ed.From,
			To:         ed.To,
			Label:      ed.Label,
			ArrowStart: ed.ArrowStart,
			ArrowEnd:   ed.ArrowEnd,
			Line:       LineStyle(ed.Line),
			MinLen:     ed.MinLen,
			Points:     slices.Clone(ed.Points),
			Reversed:   ed.Reversed,
		}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ed.From, ed.To, err)
		}
	}

	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Graph to pretty-printed JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	return json.MarshalIndent(ToDoc(g), "", "  ")
}

// Unmarshal deserializes JSON bytes into a Graph.
func Unmarshal(data []byte) (*Graph, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return FromDoc(doc)
}

// Read reads a JSON-encoded Graph from r.
func Read(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// ReadFile reads a JSON-encoded Graph from a file.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// WriteFile writes a Graph to a JSON file.
func WriteFile(g *Graph, path string) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
