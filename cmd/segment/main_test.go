package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/segment"
	segjson "github.com/fwojciec/segment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func runCLI(t *testing.T, getenv func(string) string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, getenv, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		opts, err := parseFlags(nil, env(nil), &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "xml", opts.strategy)
		assert.Equal(t, "default", opts.provider)
		assert.Equal(t, inputRaw, opts.input)
		assert.Equal(t, formatPretty, opts.format)
		assert.Equal(t, 64, opts.chunk)
	})

	t.Run("strategy from environment", func(t *testing.T) {
		t.Parallel()
		opts, err := parseFlags(nil, env(map[string]string{"SEGMENT_PARSER_STRATEGY": "sentinel"}), &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "sentinel", opts.strategy)
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		t.Parallel()
		opts, err := parseFlags([]string{"--strategy", "json"},
			env(map[string]string{"SEGMENT_PARSER_STRATEGY": "sentinel"}), &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "json", opts.strategy)
	})

	t.Run("provider inferred from input", func(t *testing.T) {
		t.Parallel()
		for input, want := range map[string]string{
			inputRaw:          "default",
			inputAnthropicSSE: "anthropic",
			inputGeminiJSON:   "gemini",
		} {
			opts, err := parseFlags([]string{"--input", input}, env(nil), &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, want, opts.provider, input)
		}
	})

	t.Run("invalid values are all reported", func(t *testing.T) {
		t.Parallel()
		_, err := parseFlags([]string{"--input", "grpc", "--format", "xml", "--chunk", "0"}, env(nil), &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown --input "grpc"`)
		assert.Contains(t, err.Error(), `unknown --format "xml"`)
		assert.Contains(t, err.Error(), "--chunk must be positive")
	})

	t.Run("live format", func(t *testing.T) {
		t.Parallel()
		opts, err := parseFlags([]string{"--format", "live"}, env(nil), &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, formatLive, opts.format)
	})

	t.Run("prompt with files", func(t *testing.T) {
		t.Parallel()
		_, err := parseFlags([]string{"--prompt", "hi", "a.txt"}, env(nil), &bytes.Buffer{})
		assert.ErrorContains(t, err, "--prompt cannot be combined")
	})
}

func TestRun_StdinPretty(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, env(nil), `Checking. <tool name="weather"><arguments><city>NYC</city></arguments></tool>`,
		"--chunk", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Checking.")
	assert.Contains(t, out, "weather")
	assert.Contains(t, out, "city: NYC")
}

func TestRun_EventsFormat(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, env(nil), `a <tool name="ls"/> b`, "--format", "events", "--chunk", "1")
	require.NoError(t, err)

	events, err := segjson.DecodeEvents(strings.NewReader(out))
	require.NoError(t, err)
	segs := segment.Reassemble(events)
	require.Len(t, segs, 3)
	assert.Equal(t, "a ", segs[0].Content)
	call, ok := segs[1].ToolCall()
	require.True(t, ok)
	assert.Equal(t, "ls", call.Name)
	assert.Equal(t, " b", segs[2].Content)
}

func TestLiveStream(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	one := writeFile(t, dir, "one.txt", `run <tool name="ls"/>`)
	two := writeFile(t, dir, "two.txt", "just text")
	opts, err := parseFlags([]string{"--format", "live", "--chunk", "2", one, two}, env(nil), &bytes.Buffer{})
	require.NoError(t, err)
	names, err := inputNames(opts)
	require.NoError(t, err)

	var events []segment.Event
	stream := liveStream(opts, names, env(nil), strings.NewReader(""), newLogger(&bytes.Buffer{}, false))
	require.NoError(t, stream(context.Background(), func(e segment.Event) { events = append(events, e) }))

	segs := segment.Reassemble(events)
	require.Len(t, segs, 3)
	assert.Equal(t, "seg1_1", segs[0].ID)
	assert.Equal(t, "run ", segs[0].Content)
	call, ok := segs[1].ToolCall()
	require.True(t, ok)
	assert.Equal(t, "ls", call.Name)
	assert.Equal(t, "seg2_1", segs[2].ID)
	assert.Equal(t, "just text", segs[2].Content)
}

func TestRun_FilesAndTranscript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "one.txt", `[[SEG_START {"type":"tool_call","tool_name":"ls","dir":"/"}]][[SEG_END]]`)
	writeFile(t, dir, "two.txt", "just text")
	saved := filepath.Join(dir, "out", "transcript.json")

	out, _, err := runCLI(t, env(nil), "",
		"--strategy", "sentinel", "--format", "segments", "--out", saved, filepath.Join(dir, "*.txt"))
	require.NoError(t, err)

	var printed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &printed))

	tr, err := segjson.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, "sentinel", tr.Preset)
	require.Len(t, tr.Segments, 2)
	assert.True(t, strings.HasPrefix(tr.Segments[0].ID, "seg1_"))
	assert.True(t, strings.HasPrefix(tr.Segments[1].ID, "seg2_"))
	assert.Equal(t, "just text", tr.Segments[1].Content)
}

func TestRun_AnthropicSSE(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Looking."}}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_9","name":"grep","input":{}}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"q\":\"x\"}"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":1}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")

	out, _, err := runCLI(t, env(nil), body, "--input", "anthropic-sse", "--strategy", "api_tool_call", "--format", "events")
	require.NoError(t, err)

	events, err := segjson.DecodeEvents(strings.NewReader(out))
	require.NoError(t, err)
	segs := segment.Reassemble(events)
	require.Len(t, segs, 2)
	assert.Equal(t, "Looking.", segs[0].Content)
	assert.Equal(t, "toolu_9", segs[1].ID)
	call, ok := segs[1].ToolCall()
	require.True(t, ok)
	assert.Equal(t, segment.ToolCall{ID: "toolu_9", Name: "grep", Arguments: map[string]any{"q": "x"}}, call)
}

func TestRun_GeminiJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "reply.json", `[
  {"candidates":[{"content":{"role":"model","parts":[{"text":"Sure: {\"name\": \"now\", "}]}}]},
  {"candidates":[{"content":{"role":"model","parts":[{"text":"\"args\": {}}"},{"functionCall":{"name":"clock","args":{"tz":"UTC"}}}]},"finishReason":"STOP"}]}
]`)

	out, _, err := runCLI(t, env(nil), "", "--input", "gemini-json", "--strategy", "json", "--format", "events", path)
	require.NoError(t, err)

	events, err := segjson.DecodeEvents(strings.NewReader(out))
	require.NoError(t, err)
	var names []string
	for _, s := range segment.Reassemble(events) {
		if call, ok := s.ToolCall(); ok {
			names = append(names, call.Name)
		}
	}
	assert.Equal(t, []string{"now", "clock"}, names)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown preset", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, env(nil), "x", "--strategy", "yaml")
		assert.ErrorIs(t, err, segment.ErrUnknownStrategy)
	})

	t.Run("no matching files", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, env(nil), "", filepath.Join(t.TempDir(), "*.txt"))
		assert.ErrorContains(t, err, "no files match")
	})

	t.Run("prompt without api key", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, env(nil), "", "--prompt", "hello")
		assert.ErrorContains(t, err, "GEMINI_API_KEY not set")
	})

	t.Run("truncated anthropic stream", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, env(nil), "event: ping\ndata: {\"type\":\"ping\"}\n\n", "--input", "anthropic-sse")
		assert.ErrorContains(t, err, "unexpected end of stream")
	})
}

func TestRun_VerboseLogging(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t, env(nil), `<tool name="x"><broken`, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=INFO")
	assert.Contains(t, stderr, "parsed input")
}
