// # internal/graph/graph_test.go
package graph

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

func fileNode(id string) extract.Node {
	return extract.Node{ID: id, Kind: extract.KindFile, Name: id}
}

func TestMergeIdempotentNodes(t *testing.T) {
	g := New()

	g.Merge(&extract.Result{
		Nodes: []extract.Node{{ID: "a.ts", Kind: extract.KindFile, Name: "first"}},
		Edges: []extract.Edge{{Source: "a.ts", Target: "b.ts", Kind: extract.EdgeImports}},
	})
	g.Merge(&extract.Result{
		Nodes: []extract.Node{{ID: "a.ts", Kind: extract.KindFile, Name: "second"}},
		Edges: []extract.Edge{{Source: "a.ts", Target: "b.ts", Kind: extract.EdgeImports}},
	})

	res := g.Result()
	if len(res.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(res.Nodes))
	}
	if res.Nodes[0].Name != "first" {
		t.Errorf("first registration did not win: got %q", res.Nodes[0].Name)
	}
	// Edges accumulate; they are never deduplicated.
	if len(res.Edges) != 2 {
		t.Errorf("got %d edges, want 2", len(res.Edges))
	}
}

func TestResultOrderingStable(t *testing.T) {
	build := func(order []string) *extract.Result {
		g := New()
		for _, id := range order {
			g.Merge(&extract.Result{
				Nodes:           []extract.Node{fileNode(id)},
				DynamicScopeIDs: []string{id + "__f"},
			})
		}
		return g.Result()
	}

	forward := build([]string{"a.ts", "b.ts", "c.ts"})
	backward := build([]string{"c.ts", "b.ts", "a.ts"})

	if !reflect.DeepEqual(forward, backward) {
		t.Fatal("result depends on merge order")
	}
	if forward.Nodes[0].ID != "a.ts" {
		t.Errorf("nodes not sorted by id: %v", forward.Nodes)
	}
	want := []string{"a.ts__f", "b.ts__f", "c.ts__f"}
	if !reflect.DeepEqual(forward.DynamicScopeIDs, want) {
		t.Errorf("dynamic ids not sorted: %v", forward.DynamicScopeIDs)
	}
}

func TestLayers(t *testing.T) {
	g := New()
	g.Merge(&extract.Result{
		Nodes: []extract.Node{fileNode("a.ts"), fileNode("b.ts"), fileNode("c.ts"), fileNode("d.ts")},
		Edges: []extract.Edge{
			{Source: "a.ts", Target: "b.ts", Kind: extract.EdgeImports},
			{Source: "a.ts", Target: "c.ts", Kind: extract.EdgeImports},
			{Source: "b.ts", Target: "d.ts", Kind: extract.EdgeImports},
			{Source: "c.ts", Target: "d.ts", Kind: extract.EdgeImports},
			// Targets outside the node set do not affect layering.
			{Source: "a.ts", Target: "unknown.ts", Kind: extract.EdgeImports},
		},
	})

	layers, err := g.Layers()
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{{"a.ts"}, {"b.ts", "c.ts"}, {"d.ts"}}
	if !reflect.DeepEqual(layers, want) {
		t.Fatalf("got layers %v, want %v", layers, want)
	}
}

func TestLayersCycle(t *testing.T) {
	g := New()
	g.Merge(&extract.Result{
		Nodes: []extract.Node{fileNode("a.ts"), fileNode("b.ts"), fileNode("c.ts")},
		Edges: []extract.Edge{
			{Source: "a.ts", Target: "b.ts", Kind: extract.EdgeImports},
			{Source: "b.ts", Target: "a.ts", Kind: extract.EdgeImports},
			{Source: "c.ts", Target: "a.ts", Kind: extract.EdgeImports},
		},
	})

	_, err := g.Layers()
	if err == nil {
		t.Fatal("cycle went undetected")
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("got %T, want *CycleError", err)
	}
	if len(cycleErr.Cycle) < 2 {
		t.Errorf("cycle too short: %v", cycleErr.Cycle)
	}
	if msg := err.Error(); !strings.Contains(msg, "circular") || !strings.Contains(msg, "->") {
		t.Errorf("unhelpful cycle message: %q", msg)
	}
}

func TestLayersIgnoresSelfEdges(t *testing.T) {
	g := New()
	g.Merge(&extract.Result{
		Nodes: []extract.Node{fileNode("a.ts")},
		Edges: []extract.Edge{{Source: "a.ts", Target: "a.ts", Kind: extract.EdgeContains}},
	})

	layers, err := g.Layers()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(layers, [][]string{{"a.ts"}}) {
		t.Fatalf("got %v", layers)
	}
}
