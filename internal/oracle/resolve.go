// # internal/oracle/resolve.go
package oracle

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

// Resolve maps a reference expression to its declaration. Identifiers
// resolve lexically through the enclosing scopes, then through the
// file's import bindings one hop into the target file. Member
// accesses resolve their base first and then look the property up in
// the base's member surface. Anything else is absent.
func (o *FileOracle) Resolve(ref *sitter.Node) (extract.Decl, bool) {
	if ref == nil {
		return extract.Decl{}, false
	}

	switch ref.Kind() {
	case "identifier", "type_identifier":
		return o.resolveName(ref, o.file.text(ref))

	case "member_expression":
		return o.resolveMember(ref)

	case "nested_type_identifier":
		module := ref.ChildByFieldName("module")
		name := ref.ChildByFieldName("name")
		if module == nil || name == nil {
			return extract.Decl{}, false
		}
		base, ok := o.Resolve(module)
		if !ok {
			return extract.Decl{}, false
		}
		return o.memberOf(base, o.file.text(name))

	case "nested_identifier":
		if ref.NamedChildCount() < 2 {
			return extract.Decl{}, false
		}
		base, ok := o.Resolve(ref.NamedChild(0))
		if !ok {
			return extract.Decl{}, false
		}
		return o.memberOf(base, o.file.text(ref.NamedChild(ref.NamedChildCount()-1)))
	}

	return extract.Decl{}, false
}

func (o *FileOracle) local(n *sitter.Node) (extract.Decl, bool) {
	return extract.Decl{Path: o.file.relPath, Node: n, Source: o.file.source()}, true
}

// resolveName walks the enclosing scopes looking for a declaration
// binding name, then falls back to the file's import bindings.
func (o *FileOracle) resolveName(ref *sitter.Node, name string) (extract.Decl, bool) {
	if name == "" {
		return extract.Decl{}, false
	}

	source := o.file.source()
	for scope := ref.Parent(); scope != nil; scope = scope.Parent() {
		switch scope.Kind() {
		case "statement_block", "program":
			if d, ok := lookupInBlock(scope, name, source); ok {
				return o.local(d)
			}
		default:
			if d, ok := lookupParam(scope, name, source); ok {
				return o.local(d)
			}
		}
	}

	binding, ok := o.file.imports[name]
	if !ok {
		return extract.Decl{}, false
	}
	return o.resolveImported(binding)
}

// resolveImported follows one import binding into its target file.
// External modules resolve to absent.
func (o *FileOracle) resolveImported(binding importBinding) (extract.Decl, bool) {
	target, ok := o.ResolveImport(o.file.relPath, binding.specifier)
	if !ok {
		return extract.Decl{}, false
	}
	idx, err := o.project.Load(target)
	if err != nil {
		return extract.Decl{}, false
	}

	switch binding.imported {
	case "*":
		// The namespace binding denotes the target file itself.
		return extract.Decl{Path: target}, true
	case "default":
		if d, ok := idx.defaultExportDecl(); ok {
			return extract.Decl{Path: target, Node: d, Source: idx.source()}, true
		}
	default:
		if d, ok := idx.topLevelDecl(binding.imported); ok {
			return extract.Decl{Path: target, Node: d, Source: idx.source()}, true
		}
	}
	return extract.Decl{}, false
}

// resolveMember resolves a property access. `this.x` looks the
// property up in the enclosing class; anything else resolves the base
// expression first.
func (o *FileOracle) resolveMember(ref *sitter.Node) (extract.Decl, bool) {
	object := ref.ChildByFieldName("object")
	property := ref.ChildByFieldName("property")
	if object == nil || property == nil {
		return extract.Decl{}, false
	}
	name := o.file.text(property)

	if object.Kind() == "this" {
		for p := ref.Parent(); p != nil; p = p.Parent() {
			switch p.Kind() {
			case "class_declaration", "abstract_class_declaration", "class":
				if member, ok := memberDecl(p, name, o.file.source()); ok {
					return o.local(member)
				}
				return extract.Decl{}, false
			}
		}
		return extract.Decl{}, false
	}

	base, ok := o.Resolve(object)
	if !ok {
		return extract.Decl{}, false
	}
	return o.memberOf(base, name)
}

// memberOf looks name up in the member surface of a resolved base:
// the exported top level of a file (namespace imports), or the body of
// a container declaration (class statics, enum members, namespaces).
func (o *FileOracle) memberOf(base extract.Decl, name string) (extract.Decl, bool) {
	if name == "" {
		return extract.Decl{}, false
	}

	if base.Node == nil {
		idx, err := o.project.Load(base.Path)
		if err != nil {
			return extract.Decl{}, false
		}
		if d, ok := idx.topLevelDecl(name); ok {
			return extract.Decl{Path: base.Path, Node: d, Source: idx.source()}, true
		}
		return extract.Decl{}, false
	}

	switch base.Node.Kind() {
	case "class_declaration", "abstract_class_declaration",
		"enum_declaration", "interface_declaration",
		"internal_module", "module":
		if member, ok := memberDecl(base.Node, name, base.Source); ok {
			return extract.Decl{Path: base.Path, Node: member, Source: base.Source}, true
		}
	}
	return extract.Decl{}, false
}

// lookupParam matches name against the parameters of a function-like
// scope node. Both the typescript parameter wrappers and the plain
// javascript identifier forms are handled, plus the unparenthesized
// single arrow parameter.
func lookupParam(scope *sitter.Node, name string, source []byte) (*sitter.Node, bool) {
	if single := scope.ChildByFieldName("parameter"); single != nil {
		if single.Kind() == "identifier" && textOf(single, source) == name {
			return single, true
		}
	}

	params := scope.ChildByFieldName("parameters")
	if params == nil {
		return nil, false
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil {
			continue
		}
		switch param.Kind() {
		case "identifier":
			if textOf(param, source) == name {
				return param, true
			}
		case "required_parameter", "optional_parameter":
			if pattern := param.ChildByFieldName("pattern"); pattern != nil {
				if pattern.Kind() == "identifier" && textOf(pattern, source) == name {
					return param, true
				}
			}
		}
	}
	return nil, false
}
