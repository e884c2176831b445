// # internal/config/tsconfig.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muhammadmuzzammil1998/jsonc"
)

// prioritizedTSConfigNames is the lookup order when walking up from a
// source file towards the filesystem root.
var prioritizedTSConfigNames = []string{
	"tsconfig.app.json",
	"tsconfig.node.json",
	"tsconfig.json",
}

// TSConfig carries the compiler options the module resolver consults.
// Dir is the absolute directory of the loaded file; baseUrl and path
// patterns resolve relative to it.
type TSConfig struct {
	Dir     string
	BaseURL string
	Paths   map[string][]string
}

type tsconfigFile struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// FindTSConfig walks up from a source file to the first prioritized
// tsconfig file.
func FindTSConfig(startPath string) (string, bool) {
	dir := filepath.Dir(startPath)
	for {
		for _, name := range prioritizedTSConfigNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadTSConfig parses a tsconfig file. tsconfig files are JSONC, not
// JSON: comments and trailing commas are legal in them.
func LoadTSConfig(path string) (*TSConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tsconfig: %w", err)
	}

	var raw tsconfigFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parse tsconfig %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return &TSConfig{
		Dir:     filepath.Dir(abs),
		BaseURL: raw.CompilerOptions.BaseURL,
		Paths:   raw.CompilerOptions.Paths,
	}, nil
}
