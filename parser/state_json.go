package parser

import (
	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

// jsonInitState buffers a possible JSON tool-call signature until it matches
// a configured pattern or can no longer do so.
type jsonInitState struct {
	start int
}

func (s *jsonInitState) run(c *parseContext) bool {
	for c.pos < len(c.buf) {
		c.pos++
		switch checkJSONSignature(c.buf[s.start:c.pos], c.cfg.JSONSignatures) {
		case matchFull:
			c.emitter.endText()
			c.pos = s.start
			c.state = &jsonToolState{start: s.start}
			return true
		case matchNone:
			// The offending byte is rescanned as text; it may be a trigger.
			c.pos = s.start + completeRunes(c.buf[s.start:c.pos-1])
			c.emitter.appendTextSegment(c.buf[s.start:c.pos])
			return c.toText()
		}
	}
	return false
}

// finish emits an ambiguous signature as text.
func (s *jsonInitState) finish(c *parseContext) {
	c.emitter.appendTextSegment(c.buf[s.start:])
	c.pos = len(c.buf)
}

func (s *jsonInitState) anchor(*parseContext) int { return s.start }

func (s *jsonInitState) shift(n int) { s.start -= n }

// jsonToolState accumulates a JSON value until its outermost bracket closes,
// then resolves it through the configured shape.
type jsonToolState struct {
	start int
	scan  jsonScanner
}

func (s *jsonToolState) run(c *parseContext) bool {
	for c.pos < len(c.buf) {
		ch := c.buf[c.pos]
		c.pos++
		if s.scan.step(ch) {
			c.resolveJSON(c.buf[s.start:c.pos])
			return c.toText()
		}
	}
	return false
}

func (s *jsonToolState) finish(c *parseContext) {
	c.degrade("unterminated JSON tool call", c.buf[s.start:])
	c.pos = len(c.buf)
}

func (s *jsonToolState) anchor(*parseContext) int { return s.start }

func (s *jsonToolState) shift(n int) { s.start -= n }

// resolveJSON emits one tool-call segment per invocation found in raw. The
// raw JSON is the content of the first segment. Invalid JSON, or JSON the
// shape cannot resolve, is emitted as text.
func (c *parseContext) resolveJSON(raw string) {
	if !gjson.Valid(raw) {
		c.degrade("invalid JSON tool call", raw)
		return
	}
	calls := c.cfg.JSONShape.Parse([]byte(raw))
	if len(calls) == 0 {
		c.degrade("JSON value is not a tool call", raw)
		return
	}
	for i, call := range calls {
		c.emitter.startSegment(segment.KindToolCall, segment.Metadata{segment.MetaName: call.Name})
		if i == 0 {
			_ = c.emitter.appendContent(raw)
		}
		c.emitter.endSegment(call.Metadata())
	}
}
