package store

import (
	"context"
	"testing"
	"time"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
)

func testDiagram(id string, updated time.Time) Diagram {
	g := graph.New(graph.TopDown)
	_ = g.AddNode(graph.Node{ID: "a", Label: "A"})
	return Diagram{
		ID:        id,
		Name:      "test " + id,
		Doc:       graph.ToDoc(g),
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	d := testDiagram("d1", time.Now())
	if err := s.Put(ctx, d); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != d.Name {
		t.Errorf("Name = %q, want %q", got.Name, d.Name)
	}
	if len(got.Doc.Nodes) != 1 || got.Doc.Nodes[0].ID != "a" {
		t.Errorf("stored doc lost its nodes: %+v", got.Doc)
	}

	if err := s.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "d1"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get after delete = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Put(ctx, testDiagram(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d diagrams, want 3", len(got))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if got[i].ID != want {
			t.Errorf("List[%d] = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	d := testDiagram("d1", time.Now())
	if err := s.Put(ctx, d); err != nil {
		t.Fatal(err)
	}
	d.Name = "renamed"
	if err := s.Put(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "renamed")
	}
}
