package parser

import "github.com/fwojciec/segment"

// ParseString parses a complete response in one call.
func ParseString(text string, cfg Config) ([]segment.Event, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return p.FeedAndFinalize(text)
}

// ParseSegments parses a complete response and reassembles its segments.
func ParseSegments(text string, cfg Config) ([]segment.Segment, error) {
	events, err := ParseString(text, cfg)
	if err != nil {
		return nil, err
	}
	return segment.Reassemble(events), nil
}

// ParseChunks feeds chunks in order, finalizes, and returns every event.
func ParseChunks(chunks []string, cfg Config) ([]segment.Event, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	var events []segment.Event
	for _, chunk := range chunks {
		evts, err := p.Feed(chunk)
		if err != nil {
			return nil, err
		}
		events = append(events, evts...)
	}
	rest, err := p.Finalize()
	if err != nil {
		return nil, err
	}
	return append(events, rest...), nil
}
