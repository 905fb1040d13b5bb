package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/anthropic"
	"github.com/fwojciec/segment/fs"
	"github.com/fwojciec/segment/gemini"
)

const (
	stdinName  = "-"
	promptName = "gemini"
)

// input is one opened Source plus whatever it needs closed afterwards.
type input struct {
	src    segment.Source
	calls  func() []segment.ToolCall
	closer io.Closer
}

func (in input) Close() error {
	err := in.src.Close()
	if in.closer != nil {
		err = errors.Join(err, in.closer.Close())
	}
	return err
}

func noCalls() []segment.ToolCall { return nil }

// inputNames resolves the inputs to process in order.
func inputNames(opts options) ([]string, error) {
	switch {
	case opts.prompt != "":
		return []string{promptName}, nil
	case len(opts.paths) == 0:
		return []string{stdinName}, nil
	}
	var patterns []string
	var names []string
	flush := func() error {
		if len(patterns) == 0 {
			return nil
		}
		matched, err := fs.Expand(patterns...)
		if err != nil {
			return err
		}
		names = append(names, matched...)
		patterns = nil
		return nil
	}
	for _, p := range opts.paths {
		if p == stdinName {
			if err := flush(); err != nil {
				return nil, err
			}
			names = append(names, stdinName)
			continue
		}
		patterns = append(patterns, p)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return names, nil
}

func openInput(ctx context.Context, opts options, name string, getenv func(string) string, stdin io.Reader) (input, error) {
	if name == promptName && opts.prompt != "" {
		return openPrompt(ctx, opts, getenv)
	}

	var r io.Reader = stdin
	var closer io.Closer
	if name != stdinName {
		f, err := os.Open(name)
		if err != nil {
			return input{}, err
		}
		r, closer = f, f
	}

	switch opts.input {
	case inputAnthropicSSE:
		src := anthropic.NewSource(readCloser{Reader: r, closer: closer})
		return input{src: src, calls: src.Calls}, nil
	case inputGeminiJSON:
		src := gemini.NewSource(gemini.DecodeResponses(r))
		return input{src: src, calls: src.Calls, closer: closer}, nil
	default:
		src := fs.NewSource(r, fs.WithChunkSize(opts.chunk), fs.WithGraphemes(opts.graphemes))
		return input{src: src, calls: noCalls, closer: closer}, nil
	}
}

func openPrompt(ctx context.Context, opts options, getenv func(string) string) (input, error) {
	key := getenv("GEMINI_API_KEY")
	if key == "" {
		return input{}, errors.New("GEMINI_API_KEY not set (required for --prompt)")
	}
	var gopts []gemini.Option
	if opts.model != "" {
		gopts = append(gopts, gemini.WithModel(opts.model))
	}
	client, err := gemini.New(ctx, key, gopts...)
	if err != nil {
		return input{}, fmt.Errorf("gemini: %w", err)
	}
	src := client.Stream(ctx, opts.prompt)
	return input{src: src, calls: src.Calls}, nil
}

// readCloser closes closer, if any, and never the wrapped reader.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc readCloser) Close() error {
	if rc.closer == nil {
		return nil
	}
	return rc.closer.Close()
}
