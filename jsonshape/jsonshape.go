// Package jsonshape extracts tool invocations from JSON tool calls written in
// the envelope conventions of different model providers.
package jsonshape

import (
	"slices"
	"strings"

	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

// Provider identifiers understood by ForProvider.
const (
	ProviderDefault   = "default"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Shape resolves a complete, syntactically valid JSON value into zero or more
// tool invocations. Implementations are stateless and safe for concurrent use.
// A value that does not describe a tool call yields no invocations.
type Shape interface {
	Parse(raw []byte) []segment.ToolCall
}

// ShapeFunc adapts a function to the Shape interface.
type ShapeFunc func(raw []byte) []segment.ToolCall

// Parse calls f(raw).
func (f ShapeFunc) Parse(raw []byte) []segment.ToolCall { return f(raw) }

// Profile pairs the signatures that identify a provider's JSON tool calls
// with the shape that decodes them.
type Profile struct {
	Provider   string
	Signatures []string
	Shape      Shape
}

// ForProvider returns the profile for a provider. Matching is case
// insensitive; unknown providers get the permissive default profile.
func ForProvider(name string) Profile {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderOpenAI:
		return Profile{
			Provider: ProviderOpenAI,
			Signatures: []string{
				`{"tool_calls":`, `{"tool":`, `{"function":`, `[{"function":`,
				`{"id":"call_`, `[{"id":"call_`,
			},
			Shape: OpenAI{},
		}
	case ProviderAnthropic:
		return Profile{
			Provider: ProviderAnthropic,
			Signatures: []string{
				`{"type":"tool_use"`, `{"id":"toolu_`, `{"name":`, `[{"type":"tool_use"`,
			},
			Shape: Anthropic{},
		}
	case ProviderGemini:
		return Profile{
			Provider: ProviderGemini,
			Signatures: []string{
				`{"functionCall":`, `{"function_call":`, `{"name":`, `[{"name":`,
			},
			Shape: Gemini{},
		}
	default:
		return Profile{
			Provider: ProviderDefault,
			Signatures: []string{
				`{"tool":`, `{"tool_calls":`, `{"name":`, `{"function":`,
				`[{"name":`, `[{"tool":`,
			},
			Shape: Default{},
		}
	}
}

// Providers lists the provider identifiers with a dedicated profile.
func Providers() []string {
	return []string{ProviderDefault, ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// IsKnown reports whether name selects a dedicated profile.
func IsKnown(name string) bool {
	return slices.Contains(Providers(), strings.ToLower(strings.TrimSpace(name)))
}

// each applies fn to every element of an array, or to v itself otherwise.
func each(v gjson.Result, fn func(gjson.Result) []segment.ToolCall) []segment.ToolCall {
	if !v.IsArray() {
		return fn(v)
	}
	var out []segment.ToolCall
	v.ForEach(func(_, elem gjson.Result) bool {
		out = append(out, fn(elem)...)
		return true
	})
	return out
}

// firstString returns the first non-empty string found at paths.
func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := v.Get(p); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

// firstPresent returns the first value present at paths.
func firstPresent(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// arguments decodes an argument value. Objects decode directly; strings are
// parsed a second time as JSON. Anything else yields an empty map.
func arguments(v gjson.Result) map[string]any {
	if v.Type == gjson.String {
		if !gjson.Valid(v.Str) {
			return map[string]any{}
		}
		v = gjson.Parse(v.Str)
	}
	if v.IsObject() {
		if m, ok := v.Value().(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}
