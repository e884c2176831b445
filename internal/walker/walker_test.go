// # internal/walker/walker_test.go
package walker

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeTree(t *testing.T, files []string) string {
	t.Helper()

	root := t.TempDir()
	for _, rel := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte("export {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestWalkFilters(t *testing.T) {
	root := writeTree(t, []string{
		"src/a.ts",
		"src/b.tsx",
		"src/deep/c.js",
		"src/readme.md",
		"node_modules/pkg/index.ts",
		"dist/bundle.js",
		".hidden/d.ts",
		"src/a.test.ts",
	})

	w, err := New(root, []string{".*", "node_modules", "dist"}, []string{"*.test.ts"})
	if err != nil {
		t.Fatal(err)
	}
	files, err := w.Walk()
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)

	want := []string{"src/a.ts", "src/b.tsx", "src/deep/c.js"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("got %v, want %v", files, want)
	}
}

func TestWalkEmptyTree(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	files, err := w.Walk()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("got %v, want none", files)
	}
}

func TestWalkBadPattern(t *testing.T) {
	if _, err := New(t.TempDir(), []string{"["}, nil); err == nil {
		t.Fatal("malformed glob pattern was accepted")
	}
}
