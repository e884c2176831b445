// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Exclude Exclude `toml:"exclude"`
	Workers int     `toml:"workers"`
	Output  Output  `toml:"output"`
	Watch   Watch   `toml:"watch"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Output struct {
	JSON string `toml:"json"`
	DOT  string `toml:"dot"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// DefaultIgnoreDirs are pruned from every scan in addition to the
// configured excludes.
var DefaultIgnoreDirs = []string{
	".*", "__pycache__", "build", "dist", "*.egg-info", "venv", ".venv", "node_modules",
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = append([]string(nil), DefaultIgnoreDirs...)
	}
}
