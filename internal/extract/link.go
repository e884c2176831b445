// # internal/extract/link.go
package extract

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Link performs the dependency linking pass: a second depth-first walk
// that carries the stack of enclosing named scopes and derives
// containment and dependency edges between the discovered nodes.
//
// The stack is seeded with the file's own id and grows only for the
// recursive call into a scope-establishing subtree, so it is always a
// pure function of the path from the file root to the current node.
func Link(fc FileContext, o Oracle, set *NodeSet, acc *Accumulator) {
	l := &linker{fc: fc, oracle: o, set: set, acc: acc}
	l.walk(fc.Root, []string{fc.RelPath})
}

type linker struct {
	fc     FileContext
	oracle Oracle
	set    *NodeSet
	acc    *Accumulator
}

func (l *linker) walk(n *sitter.Node, stack []string) {
	top := stack[len(stack)-1]

	matchedID, matched := l.matchNode(n)
	if matched && matchedID != top {
		l.acc.AddEdge(top, matchedID, EdgeContains)
	}

	kind := n.Kind()
	switch {
	case kind == "import_statement":
		l.linkImport(n, stack[0])
		// The clause's identifiers are binding names, not uses.
		return

	case isClassDecl(kind):
		if matched {
			l.linkHeritage(n, matchedID)
		}

	case kind == "call_expression":
		l.linkCall(n, top, stack[0])

	case kind == "type_annotation":
		l.linkTypeRefs(n, top)
		return

	case kind == "identifier" || kind == "member_expression":
		l.linkValueRef(n, top)
	}

	next := stack
	if isNamedScope(n) {
		if id, ok := l.scopeID(n); ok {
			next = append(stack[:len(stack):len(stack)], id)
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			l.walk(c, next)
		}
	}
}

func (l *linker) scopeID(n *sitter.Node) (string, bool) {
	if id, ok := l.set.lookup(n); ok {
		return id, true
	}
	return NodeID(l.fc, n)
}

var overloadIndexSuffix = regexp.MustCompile(`:\d+$`)

// matchNode matches the current syntax node against a previously
// discovered node. Discovery threads an exact span→id map into this
// pass, so the match is normally exact; the original line+leaf-name
// heuristic is kept as the fallback, first found wins. Two same-named
// declarations starting on one line can therefore still be attributed
// to the first of them — a known precision limit, pinned by tests.
func (l *linker) matchNode(n *sitter.Node) (string, bool) {
	if id, ok := l.set.lookup(n); ok {
		return id, true
	}

	if _, declares := classify(n); !declares {
		return "", false
	}
	leaf, ok := leafName(n, l.fc.Source)
	if !ok {
		return "", false
	}

	line := int(n.StartPosition().Row) + 1
	for _, node := range l.acc.Nodes() {
		if node.Metadata.StartLine != line {
			continue
		}
		base := overloadIndexSuffix.ReplaceAllString(node.ID, "")
		if strings.HasSuffix(base, "__"+leaf) || strings.HasSuffix(base, "."+leaf) {
			return node.ID, true
		}
	}
	return "", false
}

// linkImport emits an imports edge for a static import declaration
// whose module resolves to a file inside the project.
func (l *linker) linkImport(n *sitter.Node, fileID string) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	specifier := trimQuotes(nodeText(src, l.fc.Source))
	if specifier == "" {
		return
	}
	if target, ok := l.oracle.ResolveImport(l.fc.RelPath, specifier); ok {
		l.acc.AddEdge(fileID, target, EdgeImports)
	}
}

// linkHeritage resolves a class's base class and implemented
// interfaces; external and vendor resolutions produce no edge.
func (l *linker) linkHeritage(n *sitter.Node, classID string) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		heritage := n.NamedChild(i)
		if heritage == nil || heritage.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < heritage.NamedChildCount(); j++ {
			clause := heritage.NamedChild(j)
			if clause == nil {
				continue
			}
			switch clause.Kind() {
			case "extends_clause":
				l.heritageEdges(clause, classID, EdgeInherits)
			case "implements_clause":
				l.heritageEdges(clause, classID, EdgeImplements)
			default:
				// Plain javascript: class_heritage wraps the base
				// expression directly.
				l.heritageEdge(clause, classID, EdgeInherits)
			}
		}
	}
}

func (l *linker) heritageEdges(clause *sitter.Node, classID string, kind EdgeKind) {
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		target := clause.NamedChild(i)
		if target == nil || target.Kind() == "type_arguments" {
			continue
		}
		l.heritageEdge(target, classID, kind)
	}
}

func (l *linker) heritageEdge(target *sitter.Node, classID string, kind EdgeKind) {
	d, ok := l.oracle.Resolve(target)
	if !ok || !l.oracle.IsInternal(d) {
		return
	}
	if tid, ok := l.declID(d); ok {
		l.acc.AddEdge(classID, tid, kind)
	}
}

// linkCall handles call expressions: a dynamic-import operator flags
// the enclosing scope as dynamic, a bare require() of one string
// argument is an indirect import, anything else that resolves to an
// internal declaration is a call.
func (l *linker) linkCall(n *sitter.Node, top, fileID string) {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return
	}

	if callee.Kind() == "import" {
		// The target module expression is not statically known.
		l.acc.MarkDynamic(top)
		return
	}

	if callee.Kind() == "identifier" && nodeText(callee, l.fc.Source) == "require" {
		if _, shadowed := l.oracle.Resolve(callee); !shadowed {
			l.linkRequire(n, fileID)
			return
		}
	}

	d, ok := l.oracle.Resolve(callee)
	if !ok || !l.oracle.IsInternal(d) {
		return
	}
	if tid, ok := l.declID(d); ok && tid != top {
		l.acc.AddEdge(top, tid, EdgeCalls)
	}
}

func (l *linker) linkRequire(call *sitter.Node, fileID string) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() != 1 {
		return
	}
	arg := args.NamedChild(0)
	if arg == nil || arg.Kind() != "string" {
		return
	}
	if target, ok := l.oracle.ResolveImport(l.fc.RelPath, trimQuotes(nodeText(arg, l.fc.Source))); ok {
		l.acc.AddEdge(fileID, target, EdgeImports)
	}
}

// linkTypeRefs visits every identifier and qualified name inside a
// type annotation and emits uses_type edges for internal resolutions.
// Qualified names resolve as a whole; their parts are not revisited.
func (l *linker) linkTypeRefs(n *sitter.Node, top string) {
	switch n.Kind() {
	case "type_identifier", "identifier", "nested_type_identifier", "nested_identifier":
		d, ok := l.oracle.Resolve(n)
		if !ok || !l.oracle.IsInternal(d) {
			return
		}
		if tid, ok := l.declID(d); ok {
			l.acc.AddEdge(top, tid, EdgeUsesType)
		}
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			l.linkTypeRefs(c, top)
		}
	}
}

// linkValueRef emits uses_variable edges for bare identifiers and
// outermost property accesses that resolve internally to a variable,
// property or enum member. Declaration sites, inner links of a chained
// access and call callees are excluded; type annotations never reach
// here because the walk does not descend into them generically.
func (l *linker) linkValueRef(n *sitter.Node, top string) {
	if p := n.Parent(); p != nil {
		switch p.Kind() {
		case "member_expression":
			return
		case "call_expression":
			if fn := p.ChildByFieldName("function"); sameSpan(fn, n) {
				return
			}
		}
		if name := p.ChildByFieldName("name"); sameSpan(name, n) {
			return
		}
		if pattern := p.ChildByFieldName("pattern"); sameSpan(pattern, n) {
			return
		}
		if key := p.ChildByFieldName("key"); sameSpan(key, n) {
			return
		}
	}

	d, ok := l.oracle.Resolve(n)
	if !ok || !l.oracle.IsInternal(d) {
		return
	}
	if !isVariableLikeDecl(d.Node) {
		return
	}
	tid, ok := l.declID(d)
	if !ok || tid == top {
		return
	}
	l.acc.AddEdge(top, tid, EdgeUsesVariable)
}

// isVariableLikeDecl reports whether a resolved declaration is a
// variable, property or enum member.
func isVariableLikeDecl(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "variable_declarator", "public_field_definition", "property_signature", "enum_assignment":
		return true
	case "property_identifier":
		p := n.Parent()
		return p != nil && p.Kind() == "enum_body"
	}
	return false
}

// declID computes the id of a resolved declaration in its own file.
func (l *linker) declID(d Decl) (string, bool) {
	if d.Node == nil {
		return d.Path, d.Path != ""
	}
	return NodeID(FileContext{RelPath: d.Path, Source: d.Source}, d.Node)
}
