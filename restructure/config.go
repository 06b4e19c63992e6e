// File: config.go
// Role: the §6 config surface (TOML-decoded) and its defaults, plus
// functional Options for programmatic overrides.
package restructure

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cfgforge/restructure/inflate"
	"github.com/cfgforge/restructure/untangle"
)

// DebugConfig carries the §6 debug.* keys: neither affects restructuring
// semantics, only what the pipeline writes out or logs along the way.
type DebugConfig struct {
	// DumpDots is debug.dump_dots: write an SVG snapshot of the graph
	// after each pass, under a per-run directory.
	DumpDots bool `toml:"dump_dots" yaml:"dump_dots"`
	// LogChannel is debug.log_channel: the charmbracelet/log logger name
	// this pipeline's messages are tagged with.
	LogChannel string `toml:"log_channel" yaml:"log_channel"`
}

// RestructureConfig is the full TOML-loadable configuration for one
// restructuring run, covering every §6 key this codebase currently has a
// knob for. Fields stay exported so toml.DecodeFile can populate them
// directly; NewRestructureConfig and the WithX constructors below are the
// preferred entry point for callers building a config in Go rather than
// from a file.
type RestructureConfig struct {
	Untangle untangle.Config `toml:"untangle" yaml:"untangle"`
	Inflate  inflate.Config  `toml:"inflate" yaml:"inflate"`
	Debug    DebugConfig     `toml:"debug" yaml:"debug"`
}

// Option mutates a RestructureConfig. Safe to apply repeatedly.
type Option func(*RestructureConfig)

// WithUntangleFactor overrides untangle.MultiplicativeFactor (spec.md §3's
// k, bounding how many times a node may be duplicated relative to the
// region's size).
func WithUntangleFactor(k int) Option {
	return func(c *RestructureConfig) { c.Untangle.MultiplicativeFactor = k }
}

// WithMaxDuplications overrides inflate.MaxDuplications, the ceiling on how
// many node duplications inflate.Run's comb walk may make across the whole
// region (zero means unlimited).
func WithMaxDuplications(n int) Option {
	return func(c *RestructureConfig) { c.Inflate.MaxDuplications = n }
}

// WithDumpDots toggles debug.dump_dots.
func WithDumpDots(enabled bool) Option {
	return func(c *RestructureConfig) { c.Debug.DumpDots = enabled }
}

// WithLogChannel overrides debug.log_channel.
func WithLogChannel(name string) Option {
	return func(c *RestructureConfig) { c.Debug.LogChannel = name }
}

// NewRestructureConfig returns the §6 defaults for every pass with opts
// applied on top, last-writer-wins.
func NewRestructureConfig(opts ...Option) RestructureConfig {
	cfg := RestructureConfig{
		Untangle: untangle.DefaultConfig(),
		Inflate:  inflate.DefaultConfig(),
		Debug:    DebugConfig{LogChannel: "restructure"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DefaultConfig returns the §6 defaults for every pass.
func DefaultConfig() RestructureConfig {
	return NewRestructureConfig()
}

// LoadConfig decodes path as TOML over DefaultConfig, so a config file only
// needs to name the keys it wants to override.
func LoadConfig(path string) (RestructureConfig, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return RestructureConfig{}, fmt.Errorf("restructure.LoadConfig(%s): %w", path, err)
	}
	return cfg, nil
}

// DumpConfigYAML renders cfg's resolved configuration as YAML, for
// operators who want to diff a run's effective settings against a TOML
// source file without reformatting it by hand.
func DumpConfigYAML(cfg RestructureConfig) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("restructure.DumpConfigYAML: %w", err)
	}
	return out, nil
}
