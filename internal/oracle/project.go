// # internal/oracle/project.go
//
// Package oracle is the semantic resolution backend consumed by the
// linking pass. It answers two questions the traversal cannot answer
// syntactically: which declaration does a reference denote, and is
// that declaration part of the project. Resolution is best-effort
// over the project's own syntax trees; anything it cannot resolve is
// reported as absent, which downstream degrades to fewer edges.
package oracle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disruptiq/topological-grapher/internal/config"
	"github.com/disruptiq/topological-grapher/internal/extract"
	"github.com/disruptiq/topological-grapher/internal/parser"
)

// Project holds the resolution state shared by all files of one
// invocation: parsed trees, per-file symbol indexes and the module
// resolution rules from tsconfig.
type Project struct {
	root     string
	parser   *parser.Parser
	tsconfig *config.TSConfig

	mu    sync.Mutex
	files map[string]*fileIndex
}

func NewProject(p *parser.Parser, root string, tsconfig *config.TSConfig) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	return &Project{
		root:     filepath.Clean(abs),
		parser:   p,
		tsconfig: tsconfig,
		files:    make(map[string]*fileIndex),
	}, nil
}

func (p *Project) Root() string {
	return p.root
}

// Rel converts an absolute path to the project-relative, slash-
// separated form used as the file id.
func (p *Project) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Load parses and indexes a file by project-relative path. The parsed
// file is cached; repeated loads are cheap. Safe for concurrent use by
// the per-file workers.
func (p *Project) Load(relPath string) (*fileIndex, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.files[relPath]; ok {
		return idx, nil
	}

	abs := filepath.Join(p.root, filepath.FromSlash(relPath))
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", relPath, err)
	}

	parsed, err := p.parser.Parse(abs, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}

	idx := newFileIndex(relPath, parsed)
	p.files[relPath] = idx
	return idx, nil
}

// OracleFor binds the project to one file under analysis and returns
// the oracle the linking pass queries. Failing to load the file here
// is fatal to the invocation; no partial graph is produced.
func (p *Project) OracleFor(relPath string) (*FileOracle, error) {
	idx, err := p.Load(relPath)
	if err != nil {
		return nil, err
	}
	return &FileOracle{project: p, file: idx}, nil
}

// Close releases every cached syntax tree.
func (p *Project) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, idx := range p.files {
		idx.parsed.Close()
	}
	p.files = make(map[string]*fileIndex)
}

// FileOracle implements extract.Oracle for one file.
type FileOracle struct {
	project *Project
	file    *fileIndex
}

// Context returns the extraction context for the bound file.
func (o *FileOracle) Context() extract.FileContext {
	return extract.FileContext{
		RelPath: o.file.relPath,
		Root:    o.file.parsed.Root(),
		Source:  o.file.parsed.Source,
	}
}

// IsInternal reports whether a declaration belongs to the project:
// under the root and outside dependency trees.
func (o *FileOracle) IsInternal(d extract.Decl) bool {
	if d.Path == "" {
		return false
	}
	if strings.HasPrefix(d.Path, "../") || filepath.IsAbs(d.Path) {
		return false
	}
	for _, part := range strings.Split(d.Path, "/") {
		if part == "node_modules" {
			return false
		}
	}
	return true
}
