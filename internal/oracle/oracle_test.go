// # internal/oracle/oracle_test.go
package oracle

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/disruptiq/topological-grapher/internal/config"
	"github.com/disruptiq/topological-grapher/internal/extract"
	"github.com/disruptiq/topological-grapher/internal/parser"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func openProject(t *testing.T, root string, tsconfig *config.TSConfig) *Project {
	t.Helper()

	p, err := NewProject(parser.NewParser(parser.NewGrammarLoader()), root, tsconfig)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p
}

func oracleFor(t *testing.T, p *Project, rel string) *FileOracle {
	t.Helper()

	o, err := p.OracleFor(rel)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

// lastRef finds the last syntax node of the given kind and source text
// in the bound file; uses come after declarations in the fixtures.
func lastRef(t *testing.T, o *FileOracle, kind, text string) *sitter.Node {
	t.Helper()

	fc := o.Context()
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Kind() == kind && string(fc.Source[n.StartByte():n.EndByte()]) == text {
			found = n
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if c := n.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(fc.Root)

	if found == nil {
		t.Fatalf("fixture has no %s node %q", kind, text)
	}
	return found
}

func TestResolveImportRelative(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":          "export {}\n",
		"src/b.ts":          "export {}\n",
		"src/util/index.ts": "export {}\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "src/a.ts")

	cases := []struct {
		specifier string
		want      string
		ok        bool
	}{
		{"./b", "src/b.ts", true},
		{"./b.ts", "src/b.ts", true},
		{"./util", "src/util/index.ts", true},
		{"../src/b", "src/b.ts", true},
		{"./missing", "", false},
		{"react", "", false},
	}
	for _, c := range cases {
		got, ok := o.ResolveImport("src/a.ts", c.specifier)
		if ok != c.ok || got != c.want {
			t.Errorf("ResolveImport(%q): got %q/%v, want %q/%v", c.specifier, got, ok, c.want, c.ok)
		}
	}
}

func TestResolveImportTSConfigPaths(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":            "export {}\n",
		"src/app/core.ts":     "export {}\n",
		"src/lib/helpers.ts":  "export {}\n",
		"src/shared/index.ts": "export {}\n",
	})
	tsconfig := &config.TSConfig{
		Dir:     root,
		BaseURL: "src",
		Paths: map[string][]string{
			"@app/*":  {"app/*"},
			"@shared": {"shared/index.ts"},
		},
	}
	o := oracleFor(t, openProject(t, root, tsconfig), "src/a.ts")

	cases := []struct {
		specifier string
		want      string
		ok        bool
	}{
		{"@app/core", "src/app/core.ts", true},
		{"@shared", "src/shared/index.ts", true},
		{"lib/helpers", "src/lib/helpers.ts", true}, // baseUrl fallback
		{"@app/missing", "", false},
	}
	for _, c := range cases {
		got, ok := o.ResolveImport("src/a.ts", c.specifier)
		if ok != c.ok || got != c.want {
			t.Errorf("ResolveImport(%q): got %q/%v, want %q/%v", c.specifier, got, ok, c.want, c.ok)
		}
	}
}

func TestResolveImportRejectsNodeModules(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/a.ts":                  "export {}\n",
		"node_modules/pkg/index.ts": "export {}\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "src/a.ts")

	if got, ok := o.ResolveImport("src/a.ts", "../node_modules/pkg"); ok {
		t.Errorf("vendor tree resolved as internal: %q", got)
	}
}

func TestResolveLocalName(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "function greet() {}\ngreet();\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "greet"))
	if !ok {
		t.Fatal("local function did not resolve")
	}
	if d.Path != "a.ts" || d.Node == nil || d.Node.Kind() != "function_declaration" {
		t.Errorf("got %q %v, want function_declaration in a.ts", d.Path, d.Node)
	}
}

func TestResolveNamedImport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { level } from \"./b\";\nlevel;\n",
		"b.ts": "export const level = 1;\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "level"))
	if !ok {
		t.Fatal("named import did not resolve")
	}
	if d.Path != "b.ts" || d.Node == nil || d.Node.Kind() != "variable_declarator" {
		t.Errorf("got %q %v, want variable_declarator in b.ts", d.Path, d.Node)
	}
}

func TestResolveAliasedImport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { level as lvl } from \"./b\";\nlvl;\n",
		"b.ts": "export const level = 1;\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "lvl"))
	if !ok || d.Path != "b.ts" {
		t.Fatalf("aliased import: got %q/%v, want b.ts", d.Path, ok)
	}
}

func TestResolveDefaultImport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import make from \"./b\";\nmake();\n",
		"b.ts": "export default function make() {}\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "make"))
	if !ok {
		t.Fatal("default import did not resolve")
	}
	if d.Path != "b.ts" || d.Node == nil || d.Node.Kind() != "function_declaration" {
		t.Errorf("got %q %v, want function_declaration in b.ts", d.Path, d.Node)
	}
}

func TestResolveNamespaceImportMember(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import * as util from \"./b\";\nutil.level;\n",
		"b.ts": "export const level = 1;\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "member_expression", "util.level"))
	if !ok {
		t.Fatal("namespace member did not resolve")
	}
	if d.Path != "b.ts" || d.Node == nil || d.Node.Kind() != "variable_declarator" {
		t.Errorf("got %q %v, want variable_declarator in b.ts", d.Path, d.Node)
	}
}

func TestResolveThisMember(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "class Engine {\n  rpm = 0;\n  read() { return this.rpm; }\n}\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "member_expression", "this.rpm"))
	if !ok {
		t.Fatal("this member did not resolve")
	}
	if d.Node == nil || d.Node.Kind() != "public_field_definition" {
		t.Errorf("got %v, want public_field_definition", d.Node)
	}
}

func TestResolveEnumMember(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { Color } from \"./b\";\nconst c = Color.Red;\n",
		"b.ts": "export enum Color { Red, Green }\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "member_expression", "Color.Red"))
	if !ok {
		t.Fatal("enum member did not resolve")
	}
	if d.Path != "b.ts" || d.Node == nil {
		t.Fatalf("got %q %v, want node in b.ts", d.Path, d.Node)
	}
}

func TestResolveShadowedName(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "function fetchData() {\n  const level = 2;\n  return level;\n}\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "level"))
	if !ok {
		t.Fatal("block-scoped name did not resolve")
	}
	if d.Node == nil || d.Node.Kind() != "variable_declarator" {
		t.Errorf("got %v, want the local variable_declarator", d.Node)
	}
}

func TestResolveParameter(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "function twice(n: number) { return n + n; }\n",
	})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	d, ok := o.Resolve(lastRef(t, o, "identifier", "n"))
	if !ok {
		t.Fatal("parameter did not resolve")
	}
	if d.Node == nil || d.Node.Kind() != "required_parameter" {
		t.Errorf("got %v, want required_parameter", d.Node)
	}
}

func TestIsInternal(t *testing.T) {
	root := writeProject(t, map[string]string{"a.ts": "export {}\n"})
	o := oracleFor(t, openProject(t, root, nil), "a.ts")

	cases := []struct {
		path string
		want bool
	}{
		{"src/a.ts", true},
		{"a.ts", true},
		{"../outside.ts", false},
		{"node_modules/react/index.js", false},
		{"", false},
	}
	for _, c := range cases {
		if got := o.IsInternal(extract.Decl{Path: c.path}); got != c.want {
			t.Errorf("IsInternal(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
