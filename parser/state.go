package parser

import "strings"

// state is a sealed set of parsing states. Each state consumes what it can
// resolve from the context buffer and may replace itself with another state.
//
// run returns true when it transitioned and the new state should run
// immediately, false when it needs more input. finish is called exactly once
// at end of stream. anchor reports the lowest buffer index the state still
// needs, and shift rebases stored indices after the buffer is compacted.
type state interface {
	run(c *parseContext) bool
	finish(c *parseContext)
	anchor(c *parseContext) int
	shift(n int)
}

// Interface compliance checks.
var (
	_ state = (*textState)(nil)
	_ state = (*jsonInitState)(nil)
	_ state = (*jsonToolState)(nil)
	_ state = (*xmlInitState)(nil)
	_ state = (*xmlToolState)(nil)
	_ state = (*rawBodyState)(nil)
	_ state = (*sentinelInitState)(nil)
	_ state = (*sentinelBodyState)(nil)
)

// textState scans plain text and hands off to an initialization state on a
// trigger character.
type textState struct{}

func (s *textState) run(c *parseContext) bool {
	start := c.pos
	if c.triggers != "" {
		if i := strings.IndexAny(c.buf[start:], c.triggers); i >= 0 {
			at := start + i
			c.emitter.appendTextSegment(c.buf[start:at])
			c.pos = at + 1
			c.state = c.trigger(c.buf[at], at)
			return true
		}
	}
	end := start + completeRunes(c.buf[start:])
	c.emitter.appendTextSegment(c.buf[start:end])
	c.pos = end
	return false
}

// finish leaves the text segment open for the parser to close.
func (s *textState) finish(c *parseContext) {
	c.emitter.appendTextSegment(c.buf[c.pos:])
	c.pos = len(c.buf)
}

func (s *textState) anchor(c *parseContext) int { return c.pos }

func (s *textState) shift(int) {}
