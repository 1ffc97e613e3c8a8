package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidConfig is returned when a configuration fails schema validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for codescope.
type Config struct {
	// Analysis engine settings
	Analysis AnalysisConfig `koanf:"analysis" json:"analysis" toml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" json:"exclude" toml:"exclude"`

	// File inclusion globs; empty means every supported file
	Include IncludeConfig `koanf:"include" json:"include" toml:"include"`

	// Output settings
	Output OutputConfig `koanf:"output" json:"output" toml:"output"`

	Log LogConfig `koanf:"log" json:"log" toml:"log"`
}

// AnalysisConfig tunes the analysis engine.
type AnalysisConfig struct {
	Workers                 int   `koanf:"workers" json:"workers" toml:"workers"` // 0 = 2x NumCPU
	MaxFileSize             int64 `koanf:"max_file_size" json:"max_file_size" toml:"max_file_size"`
	ParseTimeoutMS          int   `koanf:"parse_timeout_ms" json:"parse_timeout_ms" toml:"parse_timeout_ms"`
	HighComplexityThreshold int   `koanf:"high_complexity_threshold" json:"high_complexity_threshold" toml:"high_complexity_threshold"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" json:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" json:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" json:"gitignore" toml:"gitignore"`
}

// IncludeConfig defines doublestar globs a file must match to be analyzed.
type IncludeConfig struct {
	Patterns []string `koanf:"patterns" json:"patterns" toml:"patterns"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" json:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color  bool   `koanf:"color" json:"color" toml:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `koanf:"level" json:"level" toml:"level"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:                 0,
			MaxFileSize:             1 << 20,
			ParseTimeoutMS:          10000,
			HighComplexityThreshold: 5,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"**/*.min.js",
				"**/*.bundle.js",
				"**/*.d.ts",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".codescope",
				"dist",
				"build",
				"coverage",
				".next",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a file, layered over DefaultConfig, and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var configNames = []string{
	"codescope.toml",
	"codescope.yaml",
	"codescope.yml",
	"codescope.json",
	".codescope.toml",
	".codescope.yaml",
	".codescope.yml",
	".codescope.json",
}

var searchDirs = []string{".", ".codescope"}

// Find returns the first config file present in the standard locations, or
// an empty string.
func Find() string {
	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault loads path when given, otherwise the first config found in
// the standard locations. It returns the file that was used, empty when the
// defaults apply.
func LoadOrDefault(path string) (*Config, string, error) {
	if path == "" {
		path = Find()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

var schema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to read config schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("codescope.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	sch, err := c.Compile("codescope.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}
	return sch, nil
})

// Validate checks the configuration against the embedded JSON schema.
func (c *Config) Validate() error {
	sch, err := schema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TOML renders the configuration as TOML.
func (c *Config) TOML() ([]byte, error) {
	out, err := gotoml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// ParseTimeout returns the per-file parse timeout.
func (c *Config) ParseTimeout() time.Duration {
	return time.Duration(c.Analysis.ParseTimeoutMS) * time.Millisecond
}

// SlogLevel maps Log.Level to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ShouldExclude checks if a slash-separated relative path should be excluded
// from analysis.
func (c *Config) ShouldExclude(path string) bool {
	path = filepath.ToSlash(path)

	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, "/"+dir+"/") || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}

	// Check pattern exclusions
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}

// ShouldInclude reports whether path matches the include globs. An empty
// include list admits everything.
func (c *Config) ShouldInclude(path string) bool {
	if len(c.Include.Patterns) == 0 {
		return true
	}
	path = filepath.ToSlash(path)
	for _, pattern := range c.Include.Patterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
