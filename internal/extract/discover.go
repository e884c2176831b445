// # internal/extract/discover.go
package extract

import (
	"path"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// span keys a syntax node by its exact source range, which is stable
// across the two traversals of one invocation.
type span struct {
	start, end uint
}

// NodeSet is the output of the discovery pass: the registered nodes
// live in the accumulator, and byID maps each discovered syntax node
// span to its id so the linking pass can match declarations exactly
// instead of by the line+name heuristic.
type NodeSet struct {
	byID map[span]string
}

func (s *NodeSet) lookup(n *sitter.Node) (string, bool) {
	id, ok := s.byID[span{n.StartByte(), n.EndByte()}]
	return id, ok
}

// Discover walks every descendant of the file once, classifies
// declarations and registers the node set. Local variables inside
// function bodies are skipped as noise, except variables bound to
// function values, which denote callable units and are captured at
// any depth.
func Discover(fc FileContext, acc *Accumulator) *NodeSet {
	set := &NodeSet{byID: make(map[span]string)}

	acc.AddNode(Node{
		ID:   fc.RelPath,
		Kind: KindFile,
		Name: path.Base(fc.RelPath),
		Metadata: Metadata{
			FilePath:  fc.RelPath,
			StartLine: 1,
			EndLine:   int(fc.Root.EndPosition().Row) + 1,
		},
	})

	discoverNode(fc, fc.Root, acc, set)
	return set
}

func discoverNode(fc FileContext, n *sitter.Node, acc *Accumulator, set *NodeSet) {
	if kind, ok := classify(n); ok {
		if id, ok := NodeID(fc, n); ok {
			name, _ := leafName(n, fc.Source)
			acc.AddNode(Node{
				ID:   id,
				Kind: kind,
				Name: name,
				Metadata: Metadata{
					FilePath:  fc.RelPath,
					StartLine: int(n.StartPosition().Row) + 1,
					EndLine:   int(n.EndPosition().Row) + 1,
				},
			})
			set.byID[span{n.StartByte(), n.EndByte()}] = id
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			discoverNode(fc, c, acc, set)
		}
	}
}

// classify maps a syntax node to the graph node kind it declares, if
// any.
func classify(n *sitter.Node) (NodeKind, bool) {
	kind := n.Kind()
	switch {
	case isClassDecl(kind):
		return KindClass, true
	case isFunctionDecl(kind):
		return KindFunction, true
	case kind == "interface_declaration":
		return KindInterface, true
	case kind == "enum_declaration":
		return KindEnum, true
	case kind == "type_alias_declaration":
		return KindType, true
	case isNamespaceDecl(kind):
		return KindNamespace, true
	case isMethodDecl(n), kind == "construct_signature":
		return KindFunction, true
	case kind == "public_field_definition":
		return KindVariable, true
	case kind == "variable_declarator":
		if isFunctionValuedVariable(n) {
			return KindFunction, true
		}
		if !insideFunctionBody(n) {
			return KindVariable, true
		}
	case isDefaultExportedValue(n):
		// Anonymous `export default` parses as an expression.
		if kind == "class" {
			return KindClass, true
		}
		return KindFunction, true
	}
	return "", false
}
