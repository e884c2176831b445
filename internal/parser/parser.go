// # internal/parser/parser.go
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader *GrammarLoader
}

// ParsedFile owns a syntax tree and its source for the duration of an
// extraction. Close releases the tree; the caller must keep the file
// alive while any pass still reads from it.
type ParsedFile struct {
	Path     string
	Language string
	Source   []byte
	tree     *sitter.Tree
}

func (f *ParsedFile) Root() *sitter.Node {
	return f.tree.RootNode()
}

func (f *ParsedFile) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{loader: loader}
}

// Parse builds the syntax tree for one file's content.
func (p *Parser) Parse(path string, content []byte) (*ParsedFile, error) {
	lang := DetectLanguage(path)
	if lang == "" {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, fmt.Errorf("grammar not loaded: %s", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}

	return &ParsedFile{
		Path:     path,
		Language: lang,
		Source:   content,
		tree:     tree,
	}, nil
}

// DetectLanguage returns the language id for a path, or "".
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	}
	return ""
}

// Supported reports whether the path belongs to a language with a
// loaded grammar.
func Supported(path string) bool {
	return DetectLanguage(path) != ""
}
