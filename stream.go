package segment

import (
	"context"
	"errors"
	"io"
)

// Parser decomposes raw model text into segment events as it arrives.
//
// Feed appends a fragment and returns the events that became determinable.
// Finalize flushes whatever is still pending and closes any open segment.
// Both return ErrAlreadyFinalized once Finalize has been called. A Parser is
// not safe for concurrent use; use one instance per model response.
type Parser interface {
	Feed(fragment string) ([]Event, error)
	Finalize() ([]Event, error)
}

// Source produces raw text fragments in their original order using a
// pull-based iterator pattern. Next returns io.EOF when the response is
// complete. Fragment boundaries carry no meaning.
type Source interface {
	Next() (string, error)
	Close() error
}

// Pump drains src into p, forwarding every event to onEvent (which may be
// nil). It finalizes p on io.EOF. Cancellation is checked between fragments;
// on any error p is left unfinalized and the error is returned.
func Pump(ctx context.Context, src Source, p Parser, onEvent func(Event)) error {
	emit := func(events []Event) {
		if onEvent == nil {
			return
		}
		for _, evt := range events {
			onEvent(evt)
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fragment, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		events, err := p.Feed(fragment)
		if err != nil {
			return err
		}
		emit(events)
	}
	events, err := p.Finalize()
	if err != nil {
		return err
	}
	emit(events)
	return nil
}

// Collect drains src into p and returns every event produced.
func Collect(ctx context.Context, src Source, p Parser) ([]Event, error) {
	var events []Event
	err := Pump(ctx, src, p, func(e Event) { events = append(events, e) })
	return events, err
}
