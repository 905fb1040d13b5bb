package parser

import (
	"strings"

	"github.com/fwojciec/segment"
)

// xmlInitState resolves a '<' into a tool opening tag or literal text.
type xmlInitState struct {
	start int
	named bool // "<tool" followed by a delimiter has been seen
	quote byte // quote character of the attribute value being read
}

func (s *xmlInitState) run(c *parseContext) bool {
	for c.pos < len(c.buf) {
		ch := c.buf[c.pos]
		c.pos++
		if !s.named {
			switch checkXMLTag(c.buf[s.start:c.pos]) {
			case matchPartial:
				continue
			case matchNone:
				return s.reject(c)
			}
			s.named = true
		}
		if s.quote != 0 {
			if ch == s.quote {
				s.quote = 0
			}
		} else {
			switch ch {
			case '"', '\'':
				s.quote = ch
			case '<':
				return s.reject(c)
			case '>':
				return c.openTool(s.start, c.buf[s.start:c.pos])
			}
		}
		if c.pos-s.start > maxOpenTagLength {
			return s.reject(c)
		}
	}
	return false
}

// reject commits the buffered prefix, minus the byte that broke the match,
// as text. The byte is rescanned by the text state.
func (s *xmlInitState) reject(c *parseContext) bool {
	c.pos = s.start + completeRunes(c.buf[s.start:c.pos-1])
	c.emitter.appendTextSegment(c.buf[s.start:c.pos])
	return c.toText()
}

func (s *xmlInitState) finish(c *parseContext) {
	c.emitter.appendTextSegment(c.buf[s.start:])
	c.pos = len(c.buf)
}

func (s *xmlInitState) anchor(*parseContext) int { return s.start }

func (s *xmlInitState) shift(n int) { s.start -= n }

// openTool dispatches a complete "<tool ...>" opening tag starting at start.
// Tags without a name attribute, or with malformed attributes, are text.
func (c *parseContext) openTool(start int, tag string) bool {
	inner := strings.TrimSuffix(tag[len(toolOpen):], ">")
	selfClosing := strings.HasSuffix(strings.TrimSpace(inner), "/")
	if selfClosing {
		inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
	}
	attrs, ok := parseAttributes(inner)
	if !ok || attrs["name"] == "" {
		c.emitter.appendTextSegment(tag)
		return c.toText()
	}
	c.emitter.endText()
	name := attrs["name"]
	meta := attributeMetadata(attrs)

	if selfClosing {
		call := segment.ToolCall{Name: name, Arguments: attributeArguments(attrs)}
		c.emitter.startSegment(segment.KindToolCall, meta)
		_ = c.emitter.appendContent(tag)
		c.emitter.endSegment(call.Metadata())
		return c.toText()
	}
	if kind, ok := c.cfg.RawBodyTools[name]; ok {
		c.state = &rawBodyState{start: start, open: tag, name: name, kind: kind, attrs: attrs}
		return true
	}
	c.state = &xmlToolState{start: start, bodyStart: c.pos, scan: c.pos, name: name, attrs: attrs}
	return true
}

// xmlToolState buffers a generic tool body up to its matching </tool> and
// resolves its arguments. Nested <tool> elements are counted, so an argument
// may itself hold one.
type xmlToolState struct {
	start     int // index of the opening '<'
	bodyStart int
	scan      int // where the next search for </tool> begins
	name      string
	attrs     map[string]string
}

func (s *xmlToolState) run(c *parseContext) bool {
	for {
		idx, partial := findLiteral(c.buf, s.scan, toolClose)
		if idx < 0 {
			s.scan = partial
			c.pos = len(c.buf)
			return false
		}
		s.scan = idx + len(toolClose)
		// Only the buffer up to this candidate is considered, so the result
		// does not depend on how much input follows it.
		if at, end, ok := matchClose(c.buf[:s.scan], s.bodyStart, toolTagName); ok {
			return s.resolve(c, at, end)
		}
	}
}

func (s *xmlToolState) resolve(c *parseContext, at, end int) bool {
	body := c.buf[s.bodyStart:at]
	raw := c.buf[s.start:end]
	c.pos = end

	args, err := parseXMLArguments(body)
	if err != nil {
		c.degrade("malformed XML tool call", raw, "tool", s.name, "error", err)
		return c.toText()
	}
	call := segment.ToolCall{Name: s.name, Arguments: args}
	c.emitter.startSegment(segment.KindToolCall, attributeMetadata(s.attrs))
	_ = c.emitter.appendContent(raw)
	c.emitter.endSegment(call.Metadata())
	return c.toText()
}

// finish emits an unterminated tool call as text.
func (s *xmlToolState) finish(c *parseContext) {
	c.degrade("unterminated XML tool call", c.buf[s.start:], "tool", s.name)
	c.pos = len(c.buf)
}

func (s *xmlToolState) anchor(*parseContext) int { return s.start }

func (s *xmlToolState) shift(n int) {
	s.start -= n
	s.bodyStart -= n
	s.scan -= n
}

// rawBodyState streams a tool body verbatim up to the literal </tool>,
// without interpreting entities or nested markup. The segment starts with
// the opening tag once a body byte or the closing tag arrives; until then
// the tag is held so that a call cut off right after it degrades to text.
type rawBodyState struct {
	start   int    // index of the opening '<' while not started
	open    string // the opening tag
	name    string
	kind    segment.Kind
	attrs   map[string]string
	started bool
}

func (s *rawBodyState) run(c *parseContext) bool {
	if !s.started {
		if !c.bodyReady(toolClose) {
			return false
		}
		meta := attributeMetadata(s.attrs)
		meta[segment.MetaFrameOpen] = s.open
		c.emitter.startSegment(s.kind, meta)
		_ = c.emitter.appendContent(s.open)
		s.started = true
	}
	if !c.streamUntil(toolClose) {
		return false
	}
	c.closeFramed(toolClose, s.call(c).Metadata())
	return c.toText()
}

// finish closes an unterminated body with what was captured so far.
func (s *rawBodyState) finish(c *parseContext) {
	if !s.started {
		c.degrade("raw-body tool call ended after its opening tag", c.buf[s.start:], "tool", s.name)
		c.pos = len(c.buf)
		return
	}
	c.flushBody()
	c.logger.Debug("raw-body tool call ended without closing tag", "tool", s.name)
	meta := s.call(c).Metadata()
	meta[segment.MetaIncomplete] = true
	c.emitter.endSegment(meta)
}

func (s *rawBodyState) call(c *parseContext) segment.ToolCall {
	args := attributeArguments(s.attrs)
	args[bodyArgument(s.kind)] = strings.TrimPrefix(c.emitter.currentContent(), s.open)
	return segment.ToolCall{Name: s.name, Arguments: args}
}

func (s *rawBodyState) anchor(c *parseContext) int {
	if !s.started {
		return s.start
	}
	return c.pos
}

func (s *rawBodyState) shift(n int) { s.start -= n }

// bodyArgument names the argument a raw body is reported under.
func bodyArgument(kind segment.Kind) string {
	if kind == segment.KindRunBash {
		return "command"
	}
	return "content"
}

func attributeMetadata(attrs map[string]string) segment.Metadata {
	meta := make(segment.Metadata, len(attrs))
	for k, v := range attrs {
		meta[k] = v
	}
	return meta
}

// attributeArguments returns every attribute except name as an argument.
func attributeArguments(attrs map[string]string) map[string]any {
	args := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if k != "name" {
			args[k] = v
		}
	}
	return args
}
