package parser

import (
	"fmt"
	"strings"

	"github.com/fwojciec/segment"
)

// Preset names.
const (
	PresetXML         = "xml"
	PresetJSON        = "json"
	PresetAPIToolCall = "api_tool_call"
	PresetSentinel    = "sentinel"
)

// EnvStrategy is the environment variable naming the default preset.
const EnvStrategy = "SEGMENT_PARSER_STRATEGY"

// Presets returns the valid preset names.
func Presets() []string {
	return []string{PresetXML, PresetJSON, PresetAPIToolCall, PresetSentinel}
}

// PresetConfig returns the configuration of a named preset with opts
// applied. An unknown name fails with segment.ErrUnknownStrategy.
func PresetConfig(name string, opts ...Option) (Config, error) {
	base := DefaultConfig()
	var cfg Config
	switch name {
	case PresetXML:
		cfg = base
	case PresetJSON:
		cfg = base.With(WithStrategies(segment.StrategyJSONTool))
	case PresetAPIToolCall:
		cfg = base.With(WithToolCalls(false), WithStrategies())
	case PresetSentinel:
		cfg = base.With(WithStrategies(segment.StrategySentinel))
	default:
		return Config{}, fmt.Errorf("%q (valid: %s): %w", name, strings.Join(Presets(), ", "), segment.ErrUnknownStrategy)
	}
	return cfg.With(opts...), nil
}

// NewPreset returns a Parser for a named preset.
func NewPreset(name string, opts ...Option) (*Parser, error) {
	cfg, err := PresetConfig(name, opts...)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// PresetName resolves the preset to use from an environment lookup,
// defaulting to the xml preset.
func PresetName(getenv func(string) string) string {
	if getenv != nil {
		if name := strings.TrimSpace(getenv(EnvStrategy)); name != "" {
			return name
		}
	}
	return PresetXML
}

// NewPresetFromEnv returns a Parser for the preset named by getenv.
func NewPresetFromEnv(getenv func(string) string, opts ...Option) (*Parser, error) {
	return NewPreset(PresetName(getenv), opts...)
}
