// # internal/output/output_test.go
package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

func sample() *extract.Result {
	return &extract.Result{
		Nodes: []extract.Node{
			{ID: "src/a.ts", Kind: extract.KindFile, Name: "a.ts",
				Metadata: extract.Metadata{FilePath: "src/a.ts", StartLine: 1, EndLine: 10}},
			{ID: "src/a.ts__run", Kind: extract.KindFunction, Name: "run",
				Metadata: extract.Metadata{FilePath: "src/a.ts", StartLine: 2, EndLine: 4}},
		},
		Edges: []extract.Edge{
			{Source: "src/a.ts", Target: "src/a.ts__run", Kind: extract.EdgeContains},
		},
		DynamicScopeIDs: []string{"src/a.ts__run"},
	}
}

func TestJSONShape(t *testing.T) {
	data, err := JSON(sample(), false)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Nodes []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Name     string `json:"name"`
			Metadata struct {
				FilePath  string `json:"file_path"`
				StartLine int    `json:"start_line"`
				EndLine   int    `json:"end_line"`
			} `json:"metadata"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
			Type   string `json:"type"`
		} `json:"edges"`
		DynamicScopeIDs []string `json:"dynamicScopeIds"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Nodes) != 2 || doc.Nodes[1].Type != "function" || doc.Nodes[1].Metadata.StartLine != 2 {
		t.Errorf("unexpected nodes: %+v", doc.Nodes)
	}
	if len(doc.Edges) != 1 || doc.Edges[0].Type != "contains" {
		t.Errorf("unexpected edges: %+v", doc.Edges)
	}
	if len(doc.DynamicScopeIDs) != 1 {
		t.Errorf("unexpected dynamic ids: %v", doc.DynamicScopeIDs)
	}
}

func TestJSONEmptyCollections(t *testing.T) {
	data, err := JSON(&extract.Result{}, false)
	if err != nil {
		t.Fatal(err)
	}

	s := string(data)
	if strings.Contains(s, "null") {
		t.Fatalf("empty collections serialized as null: %s", s)
	}
	for _, key := range []string{`"nodes":[]`, `"edges":[]`, `"dynamicScopeIds":[]`} {
		if !strings.Contains(s, key) {
			t.Errorf("missing %s in %s", key, s)
		}
	}
}

func TestDOT(t *testing.T) {
	out := DOT(sample())

	for _, want := range []string{
		"digraph dependencies {",
		`"src/a.ts" [label="a.ts"];`,
		`"src/a.ts" -> "src/a.ts__run" [label="contains", color=gray60];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in dot output:\n%s", want, out)
		}
	}
}

func TestDOTEscapesQuotes(t *testing.T) {
	res := &extract.Result{
		Nodes: []extract.Node{{ID: `a"b`, Kind: extract.KindFile, Name: `a"b`}},
	}
	out := DOT(res)
	if !strings.Contains(out, `"a\"b"`) {
		t.Errorf("quotes not escaped:\n%s", out)
	}
}
