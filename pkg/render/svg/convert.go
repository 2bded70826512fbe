package svg

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/loomviz/loom/pkg/graph"
	"github.com/loomviz/loom/pkg/render"
)

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}

// PDFSink renders primitives to SVG and converts the result to PDF.
type PDFSink struct {
	svg Sink
}

func NewPDFSink() *PDFSink { return &PDFSink{} }

func (s *PDFSink) Format() string { return render.FormatPDF }

func (s *PDFSink) Emit(prims []render.Primitive, g *graph.Graph) ([]byte, error) {
	doc, err := s.svg.Emit(prims, g)
	if err != nil {
		return nil, err
	}
	return ToPDF(doc)
}

var _ render.Sink = (*PDFSink)(nil)
