package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/jsonshape"
)

// Config is the immutable configuration of a Parser. Use With to derive a
// modified copy; a Config value is never mutated after construction.
type Config struct {
	// ParseToolCalls enables structured detection. When false every byte is
	// emitted as text.
	ParseToolCalls bool

	// Strategies lists the detection conventions in priority order. When two
	// strategies share a trigger character the earlier one wins.
	Strategies []segment.Strategy

	// JSONSignatures are the prefixes that identify a JSON tool call.
	JSONSignatures []string

	// JSONShape extracts invocations from a complete JSON tool call.
	JSONShape jsonshape.Shape

	// IDPrefix replaces the default "seg" segment id prefix.
	IDPrefix string

	// RawBodyTools maps tool names whose body is captured verbatim to the
	// segment kind they produce.
	RawBodyTools map[string]segment.Kind

	// Logger receives debug records when structured candidates degrade to
	// text. Nil discards them.
	Logger *slog.Logger
}

// Option overrides one field of a Config.
type Option func(*Config)

// WithToolCalls enables or disables structured detection.
func WithToolCalls(enabled bool) Option {
	return func(c *Config) {
		c.ParseToolCalls = enabled
	}
}

// WithStrategies replaces the ordered strategy list.
func WithStrategies(strategies ...segment.Strategy) Option {
	return func(c *Config) {
		c.Strategies = slices.Clone(strategies)
	}
}

// WithJSONSignatures replaces the JSON signature patterns.
func WithJSONSignatures(patterns ...string) Option {
	return func(c *Config) {
		c.JSONSignatures = slices.Clone(patterns)
	}
}

// WithJSONShape replaces the JSON shape strategy.
func WithJSONShape(shape jsonshape.Shape) Option {
	return func(c *Config) {
		c.JSONShape = shape
	}
}

// WithProvider selects the JSON signatures and shape of a provider profile.
// Unknown providers get the permissive default profile.
func WithProvider(provider string) Option {
	return func(c *Config) {
		p := jsonshape.ForProvider(provider)
		c.JSONSignatures = slices.Clone(p.Signatures)
		c.JSONShape = p.Shape
	}
}

// WithIDPrefix overrides the segment id prefix.
func WithIDPrefix(prefix string) Option {
	return func(c *Config) {
		c.IDPrefix = prefix
	}
}

// WithRawBodyTools replaces the raw-body tool table.
func WithRawBodyTools(tools map[string]segment.Kind) Option {
	return func(c *Config) {
		c.RawBodyTools = cloneKinds(tools)
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultRawBodyTools returns the tools whose bodies are captured verbatim by
// default.
func DefaultRawBodyTools() map[string]segment.Kind {
	return map[string]segment.Kind{
		"write_file": segment.KindWriteFile,
		"run_bash":   segment.KindRunBash,
	}
}

// DefaultConfig returns the configuration of the xml preset.
func DefaultConfig() Config {
	p := jsonshape.ForProvider(jsonshape.ProviderDefault)
	return Config{
		ParseToolCalls: true,
		Strategies:     []segment.Strategy{segment.StrategyXMLTag},
		JSONSignatures: p.Signatures,
		JSONShape:      p.Shape,
		RawBodyTools:   DefaultRawBodyTools(),
	}
}

// With returns a copy of c with opts applied. Slices and maps are copied so
// the receiver is never affected.
func (c Config) With(opts ...Option) Config {
	out := c
	out.Strategies = slices.Clone(c.Strategies)
	out.JSONSignatures = slices.Clone(c.JSONSignatures)
	out.RawBodyTools = cloneKinds(c.RawBodyTools)
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[segment.Strategy]bool, len(c.Strategies))
	for _, s := range c.Strategies {
		switch s {
		case segment.StrategyXMLTag, segment.StrategyJSONTool, segment.StrategySentinel:
		default:
			errs = append(errs, fmt.Errorf("unknown strategy %q: %w", s, segment.ErrValidation))
		}
		if seen[s] {
			errs = append(errs, fmt.Errorf("duplicate strategy %q: %w", s, segment.ErrValidation))
		}
		seen[s] = true
	}
	if c.has(segment.StrategyJSONTool) {
		if c.JSONShape == nil {
			errs = append(errs, fmt.Errorf("json_tool strategy requires a JSON shape: %w", segment.ErrValidation))
		}
		if len(c.JSONSignatures) == 0 {
			errs = append(errs, fmt.Errorf("json_tool strategy requires at least one signature: %w", segment.ErrValidation))
		}
	}
	for name, kind := range c.RawBodyTools {
		if kind != segment.KindWriteFile && kind != segment.KindRunBash {
			errs = append(errs, fmt.Errorf("raw-body tool %q has unsupported kind %q: %w", name, kind, segment.ErrValidation))
		}
	}
	return errors.Join(errs...)
}

func (c Config) has(s segment.Strategy) bool {
	return slices.Contains(c.Strategies, s)
}

func cloneKinds(m map[string]segment.Kind) map[string]segment.Kind {
	if m == nil {
		return nil
	}
	out := make(map[string]segment.Kind, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
