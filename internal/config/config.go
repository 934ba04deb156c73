// Package config loads optional per-project rendering defaults from a
// .cukefmt.yaml file. Command-line flags override anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cukefmt/cukefmt/internal/run"

	"gopkg.in/yaml.v3"
)

const FileName = ".cukefmt.yaml"

type Config struct {
	// Source turns on "# file:line" comments by default.
	Source bool `yaml:"source"`
	// NoMultiline suppresses tables and doc strings by default.
	NoMultiline bool `yaml:"no_multiline"`
	// Prefixes maps status names to glyphs shown before table cells,
	// e.g. failed: "✗ ".
	Prefixes map[string]string `yaml:"prefixes"`
	// TagLimits caps how many scenarios may carry a tag; the summary warns
	// about each tag over its limit, e.g. "@wip": 3.
	TagLimits map[string]int `yaml:"tag_limits"`
}

// Load reads dir's config file. A missing file yields the zero Config.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &c, nil
}

// StatusPrefixes converts the configured glyph map to renderer form.
func (c *Config) StatusPrefixes() (map[run.Status]string, error) {
	if len(c.Prefixes) == 0 {
		return nil, nil
	}
	prefixes := make(map[run.Status]string, len(c.Prefixes))
	for name, glyph := range c.Prefixes {
		status, err := run.ParseStatus(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", FileName, err)
		}
		prefixes[status] = glyph
	}
	return prefixes, nil
}
