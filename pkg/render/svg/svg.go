// Package svg serializes drawable primitives into standalone SVG
// documents. It draws exactly what the layout produced: boxes, paths
// and labels in document order, so the markup stays diffable and easy
// to snapshot in tests.
package svg

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/loomviz/loom/pkg/geo"
	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/render"
)

const margin = 10.0

// Sink implements render.Sink for the svg format.
type Sink struct{}

func New() *Sink { return &Sink{} }

func (s *Sink) Format() string { return render.FormatSVG }

// Emit writes the primitive list as an SVG document.
func (s *Sink) Emit(prims []render.Primitive, _ *graph.Graph) ([]byte, error) {
	minX, minY, maxX, maxY := bounds(prims)

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		minX-margin, minY-margin, maxX-minX+2*margin, maxY-minY+2*margin,
		maxX-minX+2*margin, maxY-minY+2*margin)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z"/></marker></defs>` + "\n")

	for _, p := range prims {
		switch p.Kind {
		case render.KindRect:
			writeRect(&buf, p)
		case render.KindPath:
			writePath(&buf, p)
		case render.KindText:
			fmt.Fprintf(&buf,
				`  <text x="%.2f" y="%.2f" font-size="%.0f" text-anchor="middle" dominant-baseline="middle"%s>%s</text>`+"\n",
				p.At.X, p.At.Y, fontSize(p), classAttr(p), escape(p.Text))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func writeRect(buf *bytes.Buffer, p render.Primitive) {
	box := p.Box
	switch p.Shape {
	case "diamond":
		d := geo.Diamond{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
		v := d.Vertices()
		fmt.Fprintf(buf, `  <polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="white" stroke="black"%s/>`+"\n",
			v[0].X, v[0].Y, v[1].X, v[1].Y, v[2].X, v[2].Y, v[3].X, v[3].Y, classAttr(p))
	case "rounded", "stadium", "cluster":
		radius := 5.0
		if p.Shape == "stadium" {
			radius = box.Height / 2
		}
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s" stroke="black"%s/>`+"\n",
			box.MinX(), box.MinY(), box.Width, box.Height, radius, fill(p), classAttr(p))
	default:
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="white" stroke="black"%s/>`+"\n",
			box.MinX(), box.MinY(), box.Width, box.Height, classAttr(p))
	}
}

func writePath(buf *bytes.Buffer, p render.Primitive) {
	if len(p.Points) == 0 {
		return
	}
	var d strings.Builder
	fmt.Fprintf(&d, "M %.2f %.2f", p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		fmt.Fprintf(&d, " L %.2f %.2f", pt.X, pt.Y)
	}

	attrs := []string{`fill="none"`, `stroke="black"`}
	switch p.Line {
	case graph.LineDashed:
		attrs = append(attrs, `stroke-dasharray="6 4"`)
	case graph.LineThick:
		attrs = append(attrs, `stroke-width="3"`)
	}
	if p.ArrowEnd != "" {
		attrs = append(attrs, `marker-end="url(#arrow)"`)
	}
	if p.ArrowStart != "" {
		attrs = append(attrs, `marker-start="url(#arrow)"`)
	}
	fmt.Fprintf(buf, `  <path d="%s" %s%s/>`+"\n", d.String(), strings.Join(attrs, " "), classAttr(p))
}

func fill(p render.Primitive) string {
	if p.Shape == "cluster" {
		return "none"
	}
	return "white"
}

func fontSize(p render.Primitive) float64 {
	if p.Font.Size > 0 {
		return p.Font.Size
	}
	return 14
}

// classAttr exposes the cluster group path and style tags as CSS classes
// so callers can restyle the document without touching geometry.
func classAttr(p render.Primitive) string {
	classes := append([]string{}, p.Group...)
	classes = append(classes, p.Styles...)
	if len(classes) == 0 {
		return ""
	}
	return fmt.Sprintf(` class="%s"`, escape(strings.Join(classes, " ")))
}

func bounds(prims []render.Primitive) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, p := range prims {
		switch p.Kind {
		case render.KindRect:
			grow(p.Box.MinX(), p.Box.MinY())
			grow(p.Box.MaxX(), p.Box.MaxY())
		case render.KindPath:
			for _, pt := range p.Points {
				grow(pt.X, pt.Y)
			}
		case render.KindText:
			grow(p.At.X, p.At.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }

var _ render.Sink = (*Sink)(nil)
