package render

import (
	"github.com/loomviz/loom/pkg/geo"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/text"
)

// Kind discriminates the primitive variants.
type Kind string

const (
	KindRect Kind = "rect"
	KindText Kind = "text"
	KindPath Kind = "path"
)

// Primitive is one drawable element produced from a laid-out graph.
// Exactly one variant's fields are populated, selected by Kind. Group
// lists the enclosing cluster IDs outermost first, so format sinks can
// scope styling without re-deriving the forest.
type Primitive struct {
	Kind Kind   `json:"kind" bson:"kind"`
	Ref  string `json:"ref,omitempty" bson:"ref,omitempty"`

	// rect variant
	Box   geo.Rect `json:"box,omitempty" bson:"box,omitempty"`
	Shape string   `json:"shape,omitempty" bson:"shape,omitempty"`

	// text variant
	Text string    `json:"text,omitempty" bson:"text,omitempty"`
	At   geo.Point `json:"at,omitempty" bson:"at,omitempty"`
	Font text.Font `json:"font,omitempty" bson:"font,omitempty"`

	// path variant
	Points     []geo.Point     `json:"points,omitempty" bson:"points,omitempty"`
	Line       graph.LineStyle `json:"line,omitempty" bson:"line,omitempty"`
	ArrowStart string          `json:"arrow_start,omitempty" bson:"arrow_start,omitempty"`
	ArrowEnd   string          `json:"arrow_end,omitempty" bson:"arrow_end,omitempty"`

	Group  []string `json:"group,omitempty" bson:"group,omitempty"`
	Styles []string `json:"styles,omitempty" bson:"styles,omitempty"`
}

// EmitPrimitives converts a laid-out graph into drawing order: cluster
// boxes outermost first, then node boxes, then edge paths, then labels
// on top.
func EmitPrimitives(g *graph.Graph, tree *graph.Tree, font text.Font) []Primitive {
	var prims []Primitive

	var clusters, plain []*graph.Node
	for _, n := range g.Nodes() {
		if n.IsCluster {
			clusters = append(clusters, n)
		} else {
			plain = append(plain, n)
		}
	}
	// outermost first so nested clusters draw on top
	for i := 1; i < len(clusters); i++ {
		for j := i; j > 0 && len(tree.Ancestry(clusters[j].ID)) < len(tree.Ancestry(clusters[j-1].ID)); j-- {
			clusters[j], clusters[j-1] = clusters[j-1], clusters[j]
		}
	}

	for _, c := range clusters {
		if c.Width == 0 && c.Height == 0 {
			continue
		}
		prims = append(prims, Primitive{
			Kind:   KindRect,
			Ref:    c.ID,
			Box:    c.Box(),
			Shape:  "cluster",
			Group:  tree.Ancestry(c.ID),
			Styles: c.Styles,
		})
	}

	for _, n := range plain {
		prims = append(prims, Primitive{
			Kind:   KindRect,
			Ref:    n.ID,
			Box:    n.Box(),
			Shape:  nodeShape(n),
			Group:  tree.Ancestry(n.ID),
			Styles: n.Styles,
		})
	}

	for _, e := range g.Edges() {
		if len(e.Points) == 0 {
			continue
		}
		// edges are scoped to the innermost cluster enclosing both ends
		var group []string
		if ca := tree.CommonAncestor(e.From, e.To); ca != graph.RootID {
			group = append(tree.Ancestry(ca), ca)
		}
		prims = append(prims, Primitive{
			Kind:       KindPath,
			Ref:        e.ID,
			Points:     e.Points,
			Line:       e.Line,
			ArrowStart: e.ArrowStart,
			ArrowEnd:   e.ArrowEnd,
			Group:      group,
		})
	}

	for _, n := range plain {
		if n.DisplayLabel() == "" {
			continue
		}
		prims = append(prims, Primitive{
			Kind:  KindText,
			Ref:   n.ID,
			Text:  n.DisplayLabel(),
			At:    geo.Point{X: n.X, Y: n.Y},
			Font:  font,
			Group: tree.Ancestry(n.ID),
		})
	}
	for _, c := range clusters {
		if c.Label == "" || (c.Width == 0 && c.Height == 0) {
			continue
		}
		// cluster labels sit at the top edge of the box
		prims = append(prims, Primitive{
			Kind:  KindText,
			Ref:   c.ID,
			Text:  c.Label,
			At:    geo.Point{X: c.X, Y: c.Box().MinY() + font.Size},
			Font:  font,
			Group: tree.Ancestry(c.ID),
		})
	}
	for _, e := range g.Edges() {
		if e.Label == "" || len(e.Points) == 0 {
			continue
		}
		mid, err := geo.PointAlongPath(e.Points, geo.PathLength(e.Points)/2)
		if err != nil {
			continue
		}
		prims = append(prims, Primitive{
			Kind: KindText,
			Ref:  e.ID,
			Text: e.Label,
			At:   mid,
			Font: font,
		})
	}

	return prims
}

func nodeShape(n *graph.Node) string {
	if n.Shape == "" {
		return "rect"
	}
	return n.Shape
}
