// # internal/extract/ident.go
package extract

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeID derives the stable identifier for a declaration. The file
// itself gets its project-relative path; declarations get
// "<relpath>__<qualifiedName>" where the qualified name is the
// dot-joined chain of enclosing class/interface/namespace names
// followed by the declaration's leaf name. Overloaded functions,
// methods and constructors get a ":<index>" suffix so each overload
// form keeps a distinct, reproducible id.
//
// Returns ok=false for declarations with no resolvable name; such
// declarations are excluded from the node set and cannot anchor edges.
func NodeID(fc FileContext, n *sitter.Node) (string, bool) {
	if n == nil || n.Kind() == "program" {
		return fc.RelPath, true
	}

	leaf, ok := leafName(n, fc.Source)
	if !ok {
		return "", false
	}
	leaf = overloadSuffix(n, fc.Source, leaf)

	qualified := leaf
	for p := n.Parent(); p != nil; p = p.Parent() {
		if !isContainerDecl(p.Kind()) && !(p.Kind() == "class" && isDefaultExported(p)) {
			continue
		}
		name, ok := leafName(p, fc.Source)
		if !ok {
			continue
		}
		qualified = name + "." + qualified
	}

	return fc.RelPath + "__" + qualified, true
}

// leafName resolves a declaration's own name, in order: the explicit
// binding name, the literal "constructor" for constructor forms, the
// bound name for variable declarators, and "::default" for an unnamed
// default-exported declaration.
func leafName(n *sitter.Node, source []byte) (string, bool) {
	if n.Kind() == "construct_signature" {
		return "constructor", true
	}

	if name := n.ChildByFieldName("name"); name != nil {
		switch name.Kind() {
		case "identifier", "type_identifier", "property_identifier", "nested_identifier":
			if text := nodeText(name, source); text != "" {
				return text, true
			}
		}
		// Computed names and binding patterns have no single bound
		// name; fall through to the default-export check.
	}

	// Identifier-like nodes name themselves. Resolved enum members
	// arrive here as bare property_identifier nodes.
	switch n.Kind() {
	case "identifier", "type_identifier", "property_identifier":
		if text := nodeText(n, source); text != "" {
			return text, true
		}
	}

	if isDefaultExported(n) {
		return "::default", true
	}

	return "", false
}

// isDefaultExported reports whether n is the declaration of an
// `export default` statement.
func isDefaultExported(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || p.Kind() != "export_statement" {
		return false
	}
	for i := uint(0); i < p.ChildCount(); i++ {
		if c := p.Child(i); c != nil && c.Kind() == "default" {
			return true
		}
	}
	return false
}

// overloadSuffix appends ":<index>" when n shares its symbol with
// other declarations: the index is the 0-based position of this exact
// declaration (matched by source offsets) among all declarations of
// that symbol, in declaration order. When the group cannot be
// computed, or n is not found in it, the unsuffixed name is returned
// rather than failing the pass.
func overloadSuffix(n *sitter.Node, source []byte, leaf string) string {
	if !isOverloadable(n) {
		return leaf
	}

	group := overloadGroup(n, source, leaf)
	if len(group) < 2 {
		return leaf
	}
	for i, member := range group {
		if sameSpan(member, n) {
			return fmt.Sprintf("%s:%d", leaf, i)
		}
	}
	return leaf
}

// overloadGroup collects the sibling declarations sharing n's symbol:
// overload signatures plus the implementation, in source order.
// Export wrappers are looked through on both sides so that exported
// and non-exported forms of one symbol group together.
func overloadGroup(n *sitter.Node, source []byte, leaf string) []*sitter.Node {
	container := n.Parent()
	if container != nil && container.Kind() == "export_statement" {
		container = container.Parent()
	}
	if container == nil {
		return nil
	}

	var group []*sitter.Node
	for i := uint(0); i < container.NamedChildCount(); i++ {
		c := container.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Kind() == "export_statement" {
			if decl := c.ChildByFieldName("declaration"); decl != nil {
				c = decl
			}
		}
		if !isOverloadable(c) {
			continue
		}
		if name, ok := leafName(c, source); ok && name == leaf {
			group = append(group, c)
		}
	}
	return group
}
