// Command segment replays recorded model output through the segment parser.
//
// Usage:
//
//	segment [flags] [file or glob ...]
//	GEMINI_API_KEY=... segment --prompt "..." [flags]
//
// The live format renders segments in a full-screen view while they stream;
// press q to leave once the stream ends, or Ctrl+C to stop it early.
//
// With no files, input is read from stdin. Globs support ** for recursive
// matching. The default preset is taken from SEGMENT_PARSER_STRATEGY.
//
// Flags:
//
//	--strategy string   Preset: xml, json, api_tool_call, sentinel
//	--provider string   JSON tool-call provider: default, openai, anthropic, gemini
//	--input string      Input format: raw, anthropic-sse, gemini-json (default raw)
//	--format string     Output: events, segments, pretty, live (default pretty)
//	--chunk int         Fragment size for raw input (default 64)
//	--graphemes         Count --chunk in grapheme clusters instead of bytes
//	--out string        Also save the transcript to this file
//	--width int         Wrap width for pretty output (default 80)
//	--prompt string     Stream a live Gemini response instead of reading files
//	--model string      Gemini model ID
//	-v, --verbose       Log parser decisions to stderr
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/bubbletea"
	"github.com/fwojciec/segment/fs"
	"github.com/fwojciec/segment/parser"
	"github.com/spf13/pflag"
)

// Input formats.
const (
	inputRaw          = "raw"
	inputAnthropicSSE = "anthropic-sse"
	inputGeminiJSON   = "gemini-json"
)

// Output formats.
const (
	formatEvents   = "events"
	formatSegments = "segments"
	formatPretty   = "pretty"
	formatLive     = "live"
)

type options struct {
	strategy  string
	provider  string
	input     string
	format    string
	out       string
	prompt    string
	model     string
	chunk     int
	width     int
	graphemes bool
	verbose   bool
	paths     []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Env is only read here and passed down as a lookup function.
	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "segment: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, getenv, stderr)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, opts.verbose)

	names, err := inputNames(opts)
	if err != nil {
		return err
	}

	w := newWriter(opts, stdout)
	if opts.format == formatLive {
		m := bubbletea.New(liveStream(opts, names, getenv, stdin, logger), segment.DefaultTheme())
		final, err := bubbletea.Run(ctx, m, tea.WithOutput(stdout))
		if err != nil {
			return err
		}
		if err := final.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		w.events = final.Events()
		return w.finish()
	}
	if err := parseInputs(ctx, opts, names, getenv, stdin, logger, w); err != nil {
		return err
	}
	return w.finish()
}

// parseInputs drives each named input through a fresh parser into w.
func parseInputs(ctx context.Context, opts options, names []string, getenv func(string) string, stdin io.Reader, logger *slog.Logger, w *writer) error {
	for i, name := range names {
		p, err := parser.NewPreset(opts.strategy, parserOptions(opts, logger, i, len(names))...)
		if err != nil {
			return err
		}
		in, err := openInput(ctx, opts, name, getenv, stdin)
		if err != nil {
			return err
		}
		err = errors.Join(pumpInput(ctx, in, p, w), in.Close())
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		logger.Info("parsed input", "input", name, "events", w.count(), "native_calls", len(in.calls()))
	}
	return nil
}

// liveStream parses the inputs on the live view's goroutine. It owns its own
// writer so the view's final model is the only shared result.
func liveStream(opts options, names []string, getenv func(string) string, stdin io.Reader, logger *slog.Logger) bubbletea.StreamFunc {
	return func(ctx context.Context, onEvent func(segment.Event)) error {
		w := newWriter(opts, io.Discard)
		w.tee = onEvent
		return parseInputs(ctx, opts, names, getenv, stdin, logger, w)
	}
}

func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("segment", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.strategy, "strategy", parser.PresetName(getenv),
		"preset: "+strings.Join(parser.Presets(), ", "))
	flags.StringVar(&opts.provider, "provider", "", "JSON tool-call provider (default: inferred from --input)")
	flags.StringVar(&opts.input, "input", inputRaw, "input format: raw, anthropic-sse, gemini-json")
	flags.StringVar(&opts.format, "format", formatPretty, "output format: events, segments, pretty, live")
	flags.IntVar(&opts.chunk, "chunk", fs.DefaultChunkSize, "fragment size for raw input")
	flags.BoolVar(&opts.graphemes, "graphemes", false, "count --chunk in grapheme clusters")
	flags.StringVar(&opts.out, "out", "", "also save the transcript to this file")
	flags.IntVar(&opts.width, "width", 80, "wrap width for pretty output")
	flags.StringVar(&opts.prompt, "prompt", "", "stream a live Gemini response to this prompt")
	flags.StringVar(&opts.model, "model", "", "Gemini model ID")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log parser decisions to stderr")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	opts.paths = flags.Args()

	var errs []error
	if !slices.Contains([]string{inputRaw, inputAnthropicSSE, inputGeminiJSON}, opts.input) {
		errs = append(errs, fmt.Errorf("unknown --input %q", opts.input))
	}
	if !slices.Contains([]string{formatEvents, formatSegments, formatPretty, formatLive}, opts.format) {
		errs = append(errs, fmt.Errorf("unknown --format %q", opts.format))
	}
	if opts.chunk < 1 {
		errs = append(errs, fmt.Errorf("--chunk must be positive, got %d", opts.chunk))
	}
	if opts.prompt != "" && len(opts.paths) > 0 {
		errs = append(errs, errors.New("--prompt cannot be combined with input files"))
	}
	if err := errors.Join(errs...); err != nil {
		return options{}, err
	}
	if opts.provider == "" {
		opts.provider = inferProvider(opts)
	}
	return opts, nil
}

// inferProvider picks the JSON shape matching the upstream API.
func inferProvider(opts options) string {
	switch {
	case opts.prompt != "" || opts.input == inputGeminiJSON:
		return "gemini"
	case opts.input == inputAnthropicSSE:
		return "anthropic"
	default:
		return "default"
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parserOptions(opts options, logger *slog.Logger, index, total int) []parser.Option {
	po := []parser.Option{
		parser.WithProvider(opts.provider),
		parser.WithLogger(logger),
	}
	if total > 1 {
		po = append(po, parser.WithIDPrefix(fmt.Sprintf("seg%d", index+1)))
	}
	return po
}
