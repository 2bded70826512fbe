package graph

import (
	stderrors "errors"
	"testing"

	"github.com/loomviz/loom/pkg/errors"
)

func TestAddNode(t *testing.T) {
	g := New(TopDown)

	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: ""}); !stderrors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !stderrors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate ID error = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("node a not found")
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized to an empty map")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(TopDown)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})

	if err := g.AddEdge(Edge{From: "a", To: "b"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{From: "ghost", To: "b"}); !stderrors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("missing source error = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "ghost"}); !stderrors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("missing target error = %v, want ErrUnknownTargetNode", err)
	}

	e := g.Edges()[0]
	if e.ID == "" {
		t.Error("edge should receive an auto-generated ID")
	}
	if e.Line != LineSolid {
		t.Errorf("line style = %q, want solid default", e.Line)
	}

	// Self-edges are permitted
	if err := g.AddEdge(Edge{From: "a", To: "a"}); err != nil {
		t.Errorf("self edge should be allowed: %v", err)
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New(TopDown)
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id})
	}

	nodes := g.Nodes()
	want := []string{"c", "a", "b"}
	for i, n := range nodes {
		if n.ID != want[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, n.ID, want[i])
		}
	}

	if got := g.InsertionIndex("a"); got != 1 {
		t.Errorf("InsertionIndex(a) = %d, want 1", got)
	}
	if got := g.InsertionIndex("ghost"); got != -1 {
		t.Errorf("InsertionIndex(ghost) = %d, want -1", got)
	}
}

func TestAdjacency(t *testing.T) {
	g := New(TopDown)
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "a", To: "c"})
	g.AddEdge(Edge{From: "b", To: "c"})

	if got := g.OutDegree("a"); got != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", got)
	}
	if got := g.InDegree("c"); got != 2 {
		t.Errorf("InDegree(c) = %d, want 2", got)
	}

	sources := g.Sources()
	if len(sources) != 1 || sources[0].ID != "a" {
		t.Errorf("Sources = %v, want [a]", sources)
	}
}

func TestReverseEdge(t *testing.T) {
	g := New(TopDown)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "b", To: "a", ArrowEnd: "arrow"})

	g.ReverseEdge("b", "a")

	e := g.Edges()[0]
	if e.From != "a" || e.To != "b" {
		t.Errorf("edge = %s→%s, want a→b", e.From, e.To)
	}
	if !e.Reversed {
		t.Error("edge should be marked Reversed")
	}
	if e.ArrowStart != "arrow" || e.ArrowEnd != "" {
		t.Error("arrow tags should swap with the direction")
	}
	if got := g.Children("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("adjacency not updated: Children(a) = %v", got)
	}
}

func TestClusterMembers(t *testing.T) {
	g := New(TopDown)
	g.AddNode(Node{ID: "box", IsCluster: true})
	g.AddNode(Node{ID: "a", ParentID: "box"})
	g.AddNode(Node{ID: "b"})
	g.AddNode(Node{ID: "c", ParentID: "box"})

	got := g.ClusterMembers("box")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("ClusterMembers = %v, want [a c]", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Graph
		wantCode errors.Code
	}{
		{
			name: "Valid",
			build: func() *Graph {
				g := New(TopDown)
				g.AddNode(Node{ID: "box", IsCluster: true})
				g.AddNode(Node{ID: "a", ParentID: "box"})
				g.AddNode(Node{ID: "b"})
				g.AddEdge(Edge{From: "a", To: "b"})
				return g
			},
		},
		{
			name: "DanglingParent",
			build: func() *Graph {
				g := New(TopDown)
				g.AddNode(Node{ID: "a", ParentID: "ghost"})
				return g
			},
			wantCode: errors.ErrCodeDanglingParent,
		},
		{
			name: "NonClusterParent",
			build: func() *Graph {
				g := New(TopDown)
				g.AddNode(Node{ID: "plain"})
				g.AddNode(Node{ID: "a", ParentID: "plain"})
				return g
			},
			wantCode: errors.ErrCodeInvalidGraph,
		},
		{
			name: "ParentCycle",
			build: func() *Graph {
				g := New(TopDown)
				g.AddNode(Node{ID: "x", IsCluster: true, ParentID: "y"})
				g.AddNode(Node{ID: "y", IsCluster: true, ParentID: "x"})
				return g
			},
			wantCode: errors.ErrCodeCyclicParentage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestClone(t *testing.T) {
	g := New(LeftRight)
	g.AddNode(Node{ID: "a", Styles: []string{"bold"}})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})

	c := g.Clone()
	n, _ := c.Node("a")
	n.X = 99
	n.Styles[0] = "changed"

	orig, _ := g.Node("a")
	if orig.X != 0 {
		t.Error("Clone should not share node structs")
	}
	if orig.Styles[0] != "bold" {
		t.Error("Clone should not share style slices")
	}
	if c.Direction() != LeftRight {
		t.Errorf("Direction = %s, want LR", c.Direction())
	}
}
