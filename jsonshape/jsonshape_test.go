package jsonshape_test

import (
	"testing"

	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/jsonshape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		want     string
		shape    jsonshape.Shape
	}{
		{"openai", "openai", jsonshape.ProviderOpenAI, jsonshape.OpenAI{}},
		{"anthropic mixed case", " Anthropic ", jsonshape.ProviderAnthropic, jsonshape.Anthropic{}},
		{"gemini", "gemini", jsonshape.ProviderGemini, jsonshape.Gemini{}},
		{"empty", "", jsonshape.ProviderDefault, jsonshape.Default{}},
		{"unknown", "mistral", jsonshape.ProviderDefault, jsonshape.Default{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := jsonshape.ForProvider(tt.provider)
			assert.Equal(t, tt.want, p.Provider)
			assert.Equal(t, tt.shape, p.Shape)
			assert.NotEmpty(t, p.Signatures)
		})
	}
}

func TestForProviderReturnsFreshSignatures(t *testing.T) {
	t.Parallel()

	a := jsonshape.ForProvider(jsonshape.ProviderDefault)
	a.Signatures[0] = "mutated"
	b := jsonshape.ForProvider(jsonshape.ProviderDefault)
	assert.NotEqual(t, "mutated", b.Signatures[0])
}

func TestIsKnown(t *testing.T) {
	t.Parallel()

	assert.True(t, jsonshape.IsKnown("OpenAI"))
	assert.True(t, jsonshape.IsKnown("default"))
	assert.False(t, jsonshape.IsKnown("mistral"))
}

func TestShapeFunc(t *testing.T) {
	t.Parallel()

	var got []byte
	shape := jsonshape.ShapeFunc(func(raw []byte) []segment.ToolCall {
		got = raw
		return []segment.ToolCall{{Name: "x"}}
	})
	calls := shape.Parse([]byte(`{}`))
	assert.Equal(t, []byte(`{}`), got)
	require.Len(t, calls, 1)
	assert.Equal(t, "x", calls[0].Name)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []segment.ToolCall
	}{
		{
			name: "name and arguments",
			raw:  `{"name": "weather", "arguments": {"city": "NYC"}}`,
			want: []segment.ToolCall{{Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "tool string and parameters",
			raw:  `{"tool": "search", "parameters": {"q": "go"}}`,
			want: []segment.ToolCall{{Name: "search", Arguments: map[string]any{"q": "go"}}},
		},
		{
			name: "function object with string arguments",
			raw:  `{"function": {"name": "weather", "arguments": "{\"city\": \"NYC\"}"}}`,
			want: []segment.ToolCall{{Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "tool_calls envelope",
			raw:  `{"tool_calls": [{"id": "call_1", "function": {"name": "weather", "arguments": "{\"city\": \"NYC\"}"}}]}`,
			want: []segment.ToolCall{{ID: "call_1", Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "tool object envelope",
			raw:  `{"tool": {"function": {"name": "ls", "arguments": {}}}}`,
			want: []segment.ToolCall{{Name: "ls", Arguments: map[string]any{}}},
		},
		{
			name: "array of calls",
			raw:  `[{"name": "a"}, {"name": "b", "args": {"n": 1}}]`,
			want: []segment.ToolCall{
				{Name: "a", Arguments: map[string]any{}},
				{Name: "b", Arguments: map[string]any{"n": float64(1)}},
			},
		},
		{
			name: "unparsable string arguments",
			raw:  `{"name": "x", "arguments": "not json"}`,
			want: []segment.ToolCall{{Name: "x", Arguments: map[string]any{}}},
		},
		{
			name: "no name",
			raw:  `{"arguments": {"a": 1}}`,
		},
		{
			name: "scalar",
			raw:  `42`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, jsonshape.Default{}.Parse([]byte(tt.raw)))
		})
	}
}

func TestOpenAI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []segment.ToolCall
	}{
		{
			name: "tool_calls",
			raw:  `{"tool_calls": [{"id": "call_9", "type": "function", "function": {"name": "weather", "arguments": "{\"city\": \"NYC\"}"}}]}`,
			want: []segment.ToolCall{{ID: "call_9", Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "tool function",
			raw:  `{"tool": {"function": {"name": "ls", "arguments": "{}"}}}`,
			want: []segment.ToolCall{{Name: "ls", Arguments: map[string]any{}}},
		},
		{
			name: "bare element",
			raw:  `{"id": "call_2", "type": "function", "function": {"name": "read", "arguments": "{\"path\": \"a.go\"}"}}`,
			want: []segment.ToolCall{{ID: "call_2", Name: "read", Arguments: map[string]any{"path": "a.go"}}},
		},
		{
			name: "object arguments",
			raw:  `{"function": {"name": "read", "arguments": {"path": "a.go"}}}`,
			want: []segment.ToolCall{{Name: "read", Arguments: map[string]any{"path": "a.go"}}},
		},
		{
			name: "array of elements",
			raw:  `[{"function": {"name": "a", "arguments": "{}"}}, {"function": {"name": "b", "arguments": "{}"}}]`,
			want: []segment.ToolCall{
				{Name: "a", Arguments: map[string]any{}},
				{Name: "b", Arguments: map[string]any{}},
			},
		},
		{
			name: "no function name",
			raw:  `{"function": {"arguments": "{}"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, jsonshape.OpenAI{}.Parse([]byte(tt.raw)))
		})
	}
}

func TestAnthropic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []segment.ToolCall
	}{
		{
			name: "tool_use block",
			raw:  `{"type": "tool_use", "id": "toolu_01", "name": "weather", "input": {"city": "NYC"}}`,
			want: []segment.ToolCall{{ID: "toolu_01", Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "untyped block",
			raw:  `{"name": "ls", "input": {}}`,
			want: []segment.ToolCall{{Name: "ls", Arguments: map[string]any{}}},
		},
		{
			name: "content array skips text",
			raw:  `{"content": [{"type": "text", "text": "hi"}, {"type": "tool_use", "id": "toolu_02", "name": "read", "input": {"path": "x"}}]}`,
			want: []segment.ToolCall{{ID: "toolu_02", Name: "read", Arguments: map[string]any{"path": "x"}}},
		},
		{
			name: "text block",
			raw:  `{"type": "text", "text": "hi"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, jsonshape.Anthropic{}.Parse([]byte(tt.raw)))
		})
	}
}

func TestGemini(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []segment.ToolCall
	}{
		{
			name: "flat name and args",
			raw:  `{"name": "weather", "args": {"city": "NYC"}}`,
			want: []segment.ToolCall{{Name: "weather", Arguments: map[string]any{"city": "NYC"}}},
		},
		{
			name: "functionCall envelope",
			raw:  `{"functionCall": {"id": "fc1", "name": "ls", "args": {"dir": "."}}}`,
			want: []segment.ToolCall{{ID: "fc1", Name: "ls", Arguments: map[string]any{"dir": "."}}},
		},
		{
			name: "function_call envelope with arguments",
			raw:  `{"function_call": {"name": "ls", "arguments": "{\"dir\": \".\"}"}}`,
			want: []segment.ToolCall{{Name: "ls", Arguments: map[string]any{"dir": "."}}},
		},
		{
			name: "parts",
			raw:  `{"parts": [{"text": "hi"}, {"functionCall": {"name": "a", "args": {}}}]}`,
			want: []segment.ToolCall{{Name: "a", Arguments: map[string]any{}}},
		},
		{
			name: "not a call",
			raw:  `{"text": "hi"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, jsonshape.Gemini{}.Parse([]byte(tt.raw)))
		})
	}
}
