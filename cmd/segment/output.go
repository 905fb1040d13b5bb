package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/goldmark"
	segjson "github.com/fwojciec/segment/json"
)

// writer accumulates parser output across inputs and renders it in the
// requested format. Events are streamed as they arrive in the events format;
// segments and pretty need the whole transcript. The live format renders
// through the terminal view, so finish only saves the transcript.
type writer struct {
	opts   options
	out    io.Writer
	enc    *segjson.Encoder
	events []segment.Event
	native int
	err    error

	// tee, when set, receives every event as it is recorded.
	tee func(segment.Event)
}

func newWriter(opts options, out io.Writer) *writer {
	return &writer{opts: opts, out: out, enc: segjson.NewEncoder(out)}
}

func (w *writer) event(e segment.Event) {
	w.events = append(w.events, e)
	if w.tee != nil {
		w.tee(e)
	}
	if w.opts.format == formatEvents && w.err == nil {
		w.err = w.enc.Encode(e)
	}
}

func (w *writer) count() int { return len(w.events) }

// addCalls records tool calls delivered natively by the upstream API as
// complete tool-call segments.
func (w *writer) addCalls(calls []segment.ToolCall) {
	for _, call := range calls {
		w.native++
		id := call.ID
		if id == "" {
			id = "api_" + strconv.Itoa(w.native)
		}
		w.event(segment.EventStart{
			ID:       id,
			Kind:     segment.KindToolCall,
			Metadata: segment.Metadata{segment.MetaName: call.Name},
		})
		w.event(segment.EventEnd{ID: id, Metadata: call.Metadata()})
	}
}

func (w *writer) transcript() segjson.Transcript {
	return segjson.Transcript{
		Preset:    w.opts.strategy,
		Provider:  w.opts.provider,
		CreatedAt: time.Now().UTC(),
		Segments:  segment.Reassemble(w.events),
	}
}

func (w *writer) finish() error {
	if w.err != nil {
		return fmt.Errorf("write events: %w", w.err)
	}
	tr := w.transcript()
	switch w.opts.format {
	case formatSegments:
		data, err := segjson.MarshalTranscript(tr)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w.out, "%s\n", data); err != nil {
			return err
		}
	case formatPretty:
		if _, err := fmt.Fprintln(w.out, goldmark.RenderSegments(tr.Segments, w.opts.width, segment.DefaultTheme())); err != nil {
			return err
		}
	}
	if w.opts.out != "" {
		if err := segjson.Save(w.opts.out, tr); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
	}
	return nil
}

// pumpInput drives one input through p into w, then appends the input's
// native tool calls.
func pumpInput(ctx context.Context, in input, p segment.Parser, w *writer) error {
	if err := segment.Pump(ctx, in.src, p, w.event); err != nil {
		return err
	}
	w.addCalls(in.calls())
	return nil
}
