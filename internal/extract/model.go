// # internal/extract/model.go
package extract

import (
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindClass     NodeKind = "class"
	KindFunction  NodeKind = "function"
	KindVariable  NodeKind = "variable"
	KindInterface NodeKind = "interface"
	KindType      NodeKind = "type"
	KindEnum      NodeKind = "enum"
	KindNamespace NodeKind = "namespace"
)

type EdgeKind string

const (
	EdgeContains     EdgeKind = "contains"
	EdgeImports      EdgeKind = "imports"
	EdgeCalls        EdgeKind = "calls"
	EdgeInherits     EdgeKind = "inherits"
	EdgeImplements   EdgeKind = "implements"
	EdgeUsesType     EdgeKind = "uses_type"
	EdgeUsesVariable EdgeKind = "uses_variable"
)

type Metadata struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata"`
}

type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
}

// Result is the full extraction record for one file.
type Result struct {
	Nodes           []Node   `json:"nodes"`
	Edges           []Edge   `json:"edges"`
	DynamicScopeIDs []string `json:"dynamicScopeIds"`
}

// FileContext carries everything the passes need about the file under
// analysis. RelPath is the project-relative path with forward slashes;
// it doubles as the file node's id.
type FileContext struct {
	RelPath string
	Root    *sitter.Node
	Source  []byte
}

// Decl is a resolved declaration as returned by the semantic oracle.
// Node is nil when the declaration is a whole file.
type Decl struct {
	Path   string
	Node   *sitter.Node
	Source []byte
}

// Oracle is the semantic resolution capability consumed by the linking
// pass. Implementations resolve references to their declarations and
// module specifiers to project files; both return ok=false for
// anything they cannot resolve statically.
type Oracle interface {
	// Resolve maps an identifier, member access or callee expression in
	// the current file to its declaration.
	Resolve(ref *sitter.Node) (Decl, bool)

	// ResolveImport maps a module specifier appearing in fromRel to a
	// project-relative file path.
	ResolveImport(fromRel, specifier string) (string, bool)

	// IsInternal reports whether a declaration belongs to the project
	// (under the root, outside vendor trees).
	IsInternal(d Decl) bool
}

// Accumulator collects nodes, edges and dynamic scope ids for one
// invocation. Node registration is idempotent: the first registration
// of an id wins and later duplicates are dropped. Edges are
// append-only and never deduplicated.
type Accumulator struct {
	nodes   []Node
	seen    map[string]bool
	edges   []Edge
	dynamic map[string]bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		seen:    make(map[string]bool),
		dynamic: make(map[string]bool),
	}
}

func (a *Accumulator) AddNode(n Node) {
	if a.seen[n.ID] {
		return
	}
	a.seen[n.ID] = true
	a.nodes = append(a.nodes, n)
}

func (a *Accumulator) AddEdge(source, target string, kind EdgeKind) {
	a.edges = append(a.edges, Edge{Source: source, Target: target, Kind: kind})
}

func (a *Accumulator) MarkDynamic(scopeID string) {
	a.dynamic[scopeID] = true
}

func (a *Accumulator) Nodes() []Node {
	return a.nodes
}

// Result assembles the final record. Dynamic scope ids are sorted so
// two runs over identical input produce identical output.
func (a *Accumulator) Result() *Result {
	dynamic := make([]string, 0, len(a.dynamic))
	for id := range a.dynamic {
		dynamic = append(dynamic, id)
	}
	sort.Strings(dynamic)

	return &Result{
		Nodes:           a.nodes,
		Edges:           a.edges,
		DynamicScopeIDs: dynamic,
	}
}
