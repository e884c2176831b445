// # internal/extract/kinds.go
package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Syntax-kind predicates for the tree-sitter typescript/tsx/javascript
// grammars. The typescript grammar is a superset of the javascript
// one, so matching on kind strings covers all three dialects.

func isClassDecl(kind string) bool {
	return kind == "class_declaration" || kind == "abstract_class_declaration"
}

func isFunctionDecl(kind string) bool {
	switch kind {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return true
	}
	return false
}

// isMethodDecl matches class members only. A method_signature inside a
// class body is a bodiless overload form of a method; the same kind
// inside an interface body is an interface member and stays out of the
// node set.
func isMethodDecl(n *sitter.Node) bool {
	switch n.Kind() {
	case "method_definition", "abstract_method_signature":
		return true
	case "method_signature":
		p := n.Parent()
		return p != nil && p.Kind() == "class_body"
	}
	return false
}

func isNamespaceDecl(kind string) bool {
	return kind == "internal_module" || kind == "module"
}

// isContainerDecl reports whether a declaration contributes its name
// to the qualified names of the declarations nested inside it.
func isContainerDecl(kind string) bool {
	return isClassDecl(kind) || kind == "interface_declaration" || isNamespaceDecl(kind)
}

// isFunctionValued matches expressions that denote a callable unit
// when bound to a variable.
func isFunctionValued(kind string) bool {
	switch kind {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// isFunctionValuedVariable reports whether n is a variable_declarator
// whose initializer is an anonymous function or arrow function.
func isFunctionValuedVariable(n *sitter.Node) bool {
	if n.Kind() != "variable_declarator" {
		return false
	}
	value := n.ChildByFieldName("value")
	return value != nil && isFunctionValued(value.Kind())
}

// isOverloadable reports whether a declaration participates in
// overload-index disambiguation: functions, methods and constructors
// (signature forms plus implementations).
func isOverloadable(n *sitter.Node) bool {
	if isFunctionDecl(n.Kind()) {
		return true
	}
	return isMethodDecl(n) || n.Kind() == "construct_signature"
}

// isNamedScope reports whether n establishes a new named scope for the
// linking pass: function, method, constructor, class or namespace
// declarations, plus variables bound to function-valued expressions.
// Interfaces and enums do not open scopes; their members attribute to
// the enclosing scope.
func isNamedScope(n *sitter.Node) bool {
	kind := n.Kind()
	if isClassDecl(kind) || isNamespaceDecl(kind) || isFunctionDecl(kind) {
		return true
	}
	if isMethodDecl(n) || isDefaultExportedValue(n) {
		return true
	}
	return isFunctionValuedVariable(n)
}

// isDefaultExportedValue matches the expression forms of an anonymous
// `export default`: these parse as class or function expressions, not
// declarations, yet still denote a named unit ("::default").
func isDefaultExportedValue(n *sitter.Node) bool {
	kind := n.Kind()
	if kind != "class" && !isFunctionValued(kind) {
		return false
	}
	return isDefaultExported(n)
}

// insideFunctionBody reports whether n sits anywhere below a
// function-like declaration. Used to drop plain local variables.
func insideFunctionBody(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		kind := p.Kind()
		if isFunctionDecl(kind) || isFunctionValued(kind) || p.Kind() == "method_definition" {
			return true
		}
	}
	return false
}

// nodeText returns the source bytes spanned by a node.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start := n.StartByte()
	end := n.EndByte()
	if start >= end || end > uint(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// trimQuotes strips the surrounding quotes of a string literal.
func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}

// sameSpan reports whether two nodes cover the exact same source
// range. Node wrappers are re-created on every traversal step, so
// identity is matched by offsets rather than by pointer.
func sameSpan(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
