package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/loomviz/loom/pkg/graph"
)

const testDoc = `{
  "direction": "TB",
  "nodes": [
    {"id": "a", "label": "Start"},
    {"id": "b", "label": "Middle"},
    {"id": "c", "label": "End", "shape": "diamond"}
  ],
  "edges": [
    {"from": "a", "to": "b"},
    {"from": "b", "to": "c", "label": "done"}
  ]
}`

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := newLogger(io.Discard, log.ErrorLevel)
	return withLogger(context.Background(), logger)
}

func writeTestDoc(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(testDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeTestDoc(t, dir)

	opts := renderOpts{
		formats: []string{"json", "svg", "dot"},
		noCache: true,
	}
	if err := runRender(testContext(t), input, &opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	for _, format := range opts.formats {
		path := filepath.Join(dir, "doc."+format)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("artifact %s not written: %v", format, err)
		}
		if len(data) == 0 {
			t.Errorf("artifact %s is empty", format)
		}
	}

	svgData, _ := os.ReadFile(filepath.Join(dir, "doc.svg"))
	if !strings.Contains(string(svgData), "<svg") {
		t.Error("svg artifact should contain an <svg> element")
	}
}

func TestRunRenderSingleOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeTestDoc(t, dir)

	opts := renderOpts{
		output:  filepath.Join(dir, "custom.svg"),
		formats: []string{"svg"},
		noCache: true,
	}
	if err := runRender(testContext(t), input, &opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.svg")); err != nil {
		t.Errorf("explicit output path not honored: %v", err)
	}
}

func TestRunRenderMissingInput(t *testing.T) {
	t.Chdir(t.TempDir())

	opts := renderOpts{formats: []string{"svg"}, noCache: true}
	if err := runRender(testContext(t), "nope.json", &opts); err == nil {
		t.Error("runRender() should fail for missing input")
	}
}

func TestRunLayoutWritesGeometry(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeTestDoc(t, dir)

	opts := renderOpts{formats: []string{"json"}, noCache: true}
	if err := runLayout(testContext(t), input, &opts); err != nil {
		t.Fatalf("runLayout() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "doc.layout.json"))
	if err != nil {
		t.Fatalf("layout output not written: %v", err)
	}

	var doc graph.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("layout output is not a valid document: %v", err)
	}
	sized := 0
	for _, n := range doc.Nodes {
		if n.Width > 0 && n.Height > 0 {
			sized++
		}
	}
	if sized != len(doc.Nodes) {
		t.Errorf("all %d nodes should carry geometry, got %d", len(doc.Nodes), sized)
	}
}

func TestRunRenderKeepsDocumentDirection(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	doc := `{
  "direction": "LR",
  "nodes": [{"id": "a"}, {"id": "b"}],
  "edges": [{"from": "a", "to": "b"}]
}`
	input := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(input, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := renderOpts{formats: []string{"json"}, noCache: true}
	result, err := executeRender(testContext(t), newLogger(io.Discard, log.ErrorLevel), input, &opts)
	if err != nil {
		t.Fatalf("executeRender() error: %v", err)
	}

	a, _ := result.Graph.Node("a")
	b, _ := result.Graph.Node("b")
	if b.X <= a.X {
		t.Errorf("LR document should flow rightwards: a=(%v,%v) b=(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
	if a.Y != b.Y {
		t.Errorf("LR document should keep chain nodes on one row: a.Y=%v b.Y=%v", a.Y, b.Y)
	}
}

func TestRunRenderInvalidDirection(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	input := writeTestDoc(t, dir)

	opts := renderOpts{formats: []string{"json"}, direction: "diag", noCache: true}
	if err := runRender(testContext(t), input, &opts); err == nil {
		t.Error("runRender() should reject invalid direction")
	}
}
