// Package parser implements the incremental segment parser: a finite-state
// engine that turns arbitrarily split model output into segment events.
//
// A Parser is fed fragments as they arrive and finalized once. Text is
// emitted as soon as it cannot be the start of a tool call; signatures that
// straddle fragment boundaries are buffered until they resolve. Malformed or
// unterminated tool calls are never errors: their raw text is emitted as a
// text segment so no input is lost.
package parser

import (
	"fmt"

	"github.com/fwojciec/segment"
)

// Interface compliance check.
var _ segment.Parser = (*Parser)(nil)

// Parser is a streaming segment parser. It is not safe for concurrent use.
type Parser struct {
	ctx       *parseContext
	finalized bool
}

// New returns a Parser for cfg.
func New(cfg Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &Parser{ctx: newContext(cfg.With())}, nil
}

// Feed appends fragment and returns the events it made determinable.
func (p *Parser) Feed(fragment string) ([]segment.Event, error) {
	if p.finalized {
		return nil, segment.ErrAlreadyFinalized
	}
	if fragment == "" {
		return nil, nil
	}
	c := p.ctx
	c.buf += fragment
	c.run()
	c.compact()
	return c.emitter.drainEvents(), nil
}

// Finalize flushes the active state, closes any open text segment and
// returns the remaining events.
func (p *Parser) Finalize() ([]segment.Event, error) {
	if p.finalized {
		return nil, segment.ErrAlreadyFinalized
	}
	p.finalized = true
	p.ctx.finalize()
	p.ctx.buf = ""
	p.ctx.pos = 0
	return p.ctx.emitter.drainEvents(), nil
}

// FeedAndFinalize feeds text as a single fragment and finalizes.
func (p *Parser) FeedAndFinalize(text string) ([]segment.Event, error) {
	events, err := p.Feed(text)
	if err != nil {
		return nil, err
	}
	rest, err := p.Finalize()
	if err != nil {
		return nil, err
	}
	return append(events, rest...), nil
}

// Config returns the parser's configuration.
func (p *Parser) Config() Config {
	return p.ctx.cfg.With()
}

// Buffered returns the number of bytes held back awaiting more input.
func (p *Parser) Buffered() int {
	return len(p.ctx.buf)
}
