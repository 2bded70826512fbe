// Package dot exports graphs to Graphviz DOT and renders raster
// artifacts through the graphviz engine. The DOT export works from the
// graph model rather than emitted primitives, since graphviz does its
// own placement.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/render"
)

// ToDOT converts a graph to Graphviz DOT format. Clusters become
// subgraphs, and the flow direction maps onto rankdir.
func ToDOT(g *graph.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(g.Direction()))
	buf.WriteString("  node [shape=box, style=rounded];\n\n")

	tree := graph.NewTree(g)
	writeMembers(&buf, g, tree, "", 1)

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeMembers emits the nodes directly owned by parent, recursing into
// cluster subgraphs. An empty parent selects top-level nodes.
func writeMembers(buf *bytes.Buffer, g *graph.Graph, tree *graph.Tree, parent string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range g.Nodes() {
		if n.ParentID != parent {
			continue
		}
		if n.IsCluster {
			fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", indent, n.ID)
			if n.Label != "" {
				fmt.Fprintf(buf, "%s  label=%q;\n", indent, n.Label)
			}
			writeMembers(buf, g, tree, n.ID, depth+1)
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n), ", "))
	}
}

func nodeAttrs(n *graph.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}
	switch n.Shape {
	case "diamond":
		attrs = append(attrs, "shape=diamond", "style=solid")
	case "stadium":
		attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=white")
	}
	return attrs
}

func edgeAttrs(e *graph.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	switch e.Line {
	case graph.LineDashed:
		attrs = append(attrs, "style=dashed")
	case graph.LineThick:
		attrs = append(attrs, "penwidth=3")
	}
	if e.ArrowEnd == "" {
		attrs = append(attrs, "arrowhead=none")
	}
	if e.ArrowStart != "" {
		attrs = append(attrs, "dir=both")
	}
	return attrs
}

func rankdir(dir graph.Direction) string {
	switch dir {
	case graph.BottomUp:
		return "BT"
	case graph.LeftRight:
		return "LR"
	case graph.RightLeft:
		return "RL"
	default:
		return "TB"
	}
}

// renderFormat runs a DOT string through graphviz.
func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) { return renderFormat(dot, graphviz.PNG) }

// RenderSVG renders a DOT graph to SVG using Graphviz, as an alternative
// to the primitive-based svg sink when graphviz placement is preferred.
func RenderSVG(dot string) ([]byte, error) { return renderFormat(dot, graphviz.SVG) }

// Sink implements render.Sink for one graphviz-backed format.
type Sink struct {
	format string
}

// NewSink creates a sink for dot or png output.
func NewSink(format string) *Sink { return &Sink{format: format} }

func (s *Sink) Format() string { return s.format }

func (s *Sink) Emit(_ []render.Primitive, g *graph.Graph) ([]byte, error) {
	dot := ToDOT(g)
	switch s.format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatPNG:
		return RenderPNG(dot)
	default:
		return nil, fmt.Errorf("unsupported graphviz format: %q", s.format)
	}
}

var _ render.Sink = (*Sink)(nil)
