// # internal/walker/walker.go
//
// Package walker enumerates the source files of a project root. Git
// repositories are walked through `git ls-files` so the repository's
// own ignore rules apply; everything else falls back to a filesystem
// walk with glob-based ignore patterns.
package walker

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/disruptiq/topological-grapher/internal/parser"
)

type Walker struct {
	root         string
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func New(root string, excludeDirs, excludeFiles []string) (*Walker, error) {
	w := &Walker{root: root}

	for _, pattern := range excludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeDirs = append(w.excludeDirs, g)
	}
	for _, pattern := range excludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		w.excludeFiles = append(w.excludeFiles, g)
	}

	return w, nil
}

// Walk returns the project-relative slash paths of every supported
// source file under the root.
func (w *Walker) Walk() ([]string, error) {
	if info, err := os.Stat(filepath.Join(w.root, ".git")); err == nil && info.IsDir() {
		if files, err := w.walkGit(); err == nil {
			return files, nil
		}
		// git missing or broken repo: fall through to the fs walk.
	}
	return w.walkFS()
}

func (w *Walker) walkGit() ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = w.root
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" || !parser.Supported(line) {
			continue
		}
		rel := filepath.ToSlash(line)
		if w.ignored(rel) {
			continue
		}
		files = append(files, rel)
	}
	return files, nil
}

func (w *Walker) walkFS() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && w.matchesDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.Supported(path) {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if w.ignored(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

// ignored applies the dir patterns to every path segment and the file
// patterns to the base name.
func (w *Walker) ignored(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		if w.matchesDir(part) {
			return true
		}
	}
	base := parts[len(parts)-1]
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Walker) matchesDir(name string) bool {
	for _, g := range w.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
