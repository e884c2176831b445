// # internal/oracle/modules.go
package oracle

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disruptiq/topological-grapher/internal/parser"
)

// resolveExtensions is the probe order for extensionless specifiers,
// mirroring the compiler's preference for typescript sources.
var resolveExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

// ResolveImport maps a module specifier to a project-relative file
// path. Relative specifiers resolve against the importing file;
// non-relative ones go through the tsconfig path mappings and baseUrl.
// Bare specifiers that fall through to node_modules are external and
// resolve to absent.
func (o *FileOracle) ResolveImport(fromRel, specifier string) (string, bool) {
	return o.project.resolveModule(fromRel, specifier)
}

func (p *Project) resolveModule(fromRel, specifier string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		base := filepath.Join(p.root, filepath.FromSlash(path.Dir(fromRel)), filepath.FromSlash(specifier))
		return p.asProjectFile(base)
	}

	if p.tsconfig != nil {
		return p.resolveFromTSConfig(specifier)
	}
	return "", false
}

func (p *Project) resolveFromTSConfig(specifier string) (string, bool) {
	ts := p.tsconfig
	base := ts.Dir
	if ts.BaseURL != "" {
		base = filepath.Join(ts.Dir, filepath.FromSlash(ts.BaseURL))
	}

	patterns := make([]string, 0, len(ts.Paths))
	for pattern := range ts.Paths {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		matched, ok := matchPathPattern(pattern, specifier)
		if !ok {
			continue
		}
		for _, target := range ts.Paths[pattern] {
			candidate := strings.Replace(target, "*", matched, 1)
			if rel, ok := p.asProjectFile(filepath.Join(base, filepath.FromSlash(candidate))); ok {
				return rel, true
			}
		}
	}

	if ts.BaseURL != "" {
		return p.asProjectFile(filepath.Join(base, filepath.FromSlash(specifier)))
	}
	return "", false
}

// matchPathPattern matches a specifier against a tsconfig paths
// pattern with at most one "*", returning the wildcard capture.
func matchPathPattern(pattern, specifier string) (string, bool) {
	star := strings.Index(pattern, "*")
	if star < 0 {
		return "", pattern == specifier
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// asProjectFile probes a path base for an existing source file: the
// path itself, extension variants, then directory index files. Only
// files under the project root and outside node_modules qualify.
func (p *Project) asProjectFile(base string) (string, bool) {
	if parser.Supported(base) {
		if rel, ok := p.projectFile(base); ok {
			return rel, true
		}
	}
	for _, ext := range resolveExtensions {
		if rel, ok := p.projectFile(base + ext); ok {
			return rel, true
		}
	}
	for _, ext := range resolveExtensions {
		if rel, ok := p.projectFile(filepath.Join(base, "index"+ext)); ok {
			return rel, true
		}
	}
	return "", false
}

func (p *Project) projectFile(candidate string) (string, bool) {
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", false
	}
	rel, err := filepath.Rel(p.root, candidate)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == "node_modules" {
			return "", false
		}
	}
	return rel, true
}
