// # internal/oracle/index.go
package oracle

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/disruptiq/topological-grapher/internal/parser"
)

// importBinding records one local name introduced by an import
// declaration.
type importBinding struct {
	specifier string
	imported  string // exported name; "default" or "*" for those forms
}

// fileIndex is the per-file symbol surface the resolver works from:
// the parsed tree plus the file's import bindings by local name.
type fileIndex struct {
	relPath string
	parsed  *parser.ParsedFile
	imports map[string]importBinding
}

func newFileIndex(relPath string, parsed *parser.ParsedFile) *fileIndex {
	idx := &fileIndex{
		relPath: relPath,
		parsed:  parsed,
		imports: make(map[string]importBinding),
	}
	idx.collectImports()
	return idx
}

func (f *fileIndex) source() []byte {
	return f.parsed.Source
}

func (f *fileIndex) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start >= end || end > uint(len(f.parsed.Source)) {
		return ""
	}
	return string(f.parsed.Source[start:end])
}

func (f *fileIndex) collectImports() {
	root := f.parsed.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != "import_statement" {
			continue
		}
		src := stmt.ChildByFieldName("source")
		if src == nil {
			continue
		}
		specifier := trimQuotes(f.text(src))
		if specifier == "" {
			continue
		}
		for j := uint(0); j < stmt.NamedChildCount(); j++ {
			clause := stmt.NamedChild(j)
			if clause == nil || clause.Kind() != "import_clause" {
				continue
			}
			f.collectImportClause(clause, specifier)
		}
	}
}

func (f *fileIndex) collectImportClause(clause *sitter.Node, specifier string) {
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		c := clause.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier":
			// import X from "mod"
			f.imports[f.text(c)] = importBinding{specifier: specifier, imported: "default"}

		case "namespace_import":
			// import * as ns from "mod"
			for j := uint(0); j < c.NamedChildCount(); j++ {
				if id := c.NamedChild(j); id != nil && id.Kind() == "identifier" {
					f.imports[f.text(id)] = importBinding{specifier: specifier, imported: "*"}
				}
			}

		case "named_imports":
			// import { a, b as c } from "mod"
			for j := uint(0); j < c.NamedChildCount(); j++ {
				spec := c.NamedChild(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				name := f.text(spec.ChildByFieldName("name"))
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = f.text(alias)
				}
				if local != "" && name != "" {
					f.imports[local] = importBinding{specifier: specifier, imported: name}
				}
			}
		}
	}
}

// topLevelDecl finds a declaration of name among the file's top-level
// statements, looking through export wrappers. The first declaration
// in source order wins, which keeps overload groups anchored at their
// first form.
func (f *fileIndex) topLevelDecl(name string) (*sitter.Node, bool) {
	return lookupInBlock(f.parsed.Root(), name, f.source())
}

// defaultExportDecl finds the declaration or value of an
// `export default` statement.
func (f *fileIndex) defaultExportDecl() (*sitter.Node, bool) {
	root := f.parsed.Root()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != "export_statement" {
			continue
		}
		hasDefault := false
		for j := uint(0); j < stmt.ChildCount(); j++ {
			if c := stmt.Child(j); c != nil && c.Kind() == "default" {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			continue
		}
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			return decl, true
		}
		if value := stmt.ChildByFieldName("value"); value != nil {
			return value, true
		}
	}
	return nil, false
}

// lookupInBlock searches the direct statements of a block-like node
// (program, statement_block, namespace body) for a declaration
// binding name.
func lookupInBlock(block *sitter.Node, name string, source []byte) (*sitter.Node, bool) {
	for i := uint(0); i < block.NamedChildCount(); i++ {
		stmt := block.NamedChild(i)
		if stmt == nil {
			continue
		}
		if stmt.Kind() == "export_statement" {
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				stmt = decl
			}
		}
		switch stmt.Kind() {
		case "class_declaration", "abstract_class_declaration",
			"function_declaration", "generator_function_declaration", "function_signature",
			"interface_declaration", "enum_declaration", "type_alias_declaration",
			"internal_module", "module":
			if declName(stmt, source) == name {
				return stmt, true
			}

		case "lexical_declaration", "variable_declaration":
			for j := uint(0); j < stmt.NamedChildCount(); j++ {
				d := stmt.NamedChild(j)
				if d != nil && d.Kind() == "variable_declarator" && declName(d, source) == name {
					return d, true
				}
			}
		}
	}
	return nil, false
}

// memberDecl searches the body of a container declaration (class,
// enum, namespace, interface) for a member named name.
func memberDecl(container *sitter.Node, name string, source []byte) (*sitter.Node, bool) {
	body := container.ChildByFieldName("body")
	if body == nil {
		return nil, false
	}

	switch body.Kind() {
	case "enum_body":
		for i := uint(0); i < body.NamedChildCount(); i++ {
			m := body.NamedChild(i)
			if m == nil {
				continue
			}
			switch m.Kind() {
			case "property_identifier":
				if textOf(m, source) == name {
					return m, true
				}
			case "enum_assignment":
				if declName(m, source) == name {
					return m, true
				}
			}
		}

	case "statement_block":
		// Namespace bodies nest ordinary statements.
		return lookupInBlock(body, name, source)

	default:
		// class_body, interface_body and object_type all list member
		// declarations with a name field.
		for i := uint(0); i < body.NamedChildCount(); i++ {
			m := body.NamedChild(i)
			if m == nil {
				continue
			}
			switch m.Kind() {
			case "method_definition", "method_signature", "abstract_method_signature",
				"public_field_definition", "property_signature":
				if declName(m, source) == name {
					return m, true
				}
			}
		}
	}
	return nil, false
}

// declName returns the binding name of a declaration-like node, or "".
func declName(n *sitter.Node, source []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	switch name.Kind() {
	case "identifier", "type_identifier", "property_identifier", "nested_identifier":
		return textOf(name, source)
	}
	return ""
}

func textOf(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start >= end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func trimQuotes(s string) string {
	for len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				s = s[1 : len(s)-1]
				continue
			}
		}
		break
	}
	return s
}
