package parser

import (
	"strings"

	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

// Sentinel framing:
//
//	[[SEG_START {"type":"tool_call","tool_name":"weather"}]]{"city":"NYC"}[[SEG_END]]
//
// The header is a JSON object. Its type selects the segment kind; every
// other header field becomes segment metadata.

type sentinelPhase int

const (
	sentinelMarker sentinelPhase = iota // matching "[[SEG_START"
	sentinelHeader                      // waiting for the header '{'
	sentinelJSON                        // inside the header object
	sentinelClose                       // waiting for "]]"
)

// sentinelInitState resolves a '[' into a sentinel header or literal text.
type sentinelInitState struct {
	start      int
	phase      sentinelPhase
	jsonStart  int
	jsonEnd    int
	closeSeen  int
	headerScan jsonScanner
}

func (s *sentinelInitState) run(c *parseContext) bool {
	for c.pos < len(c.buf) {
		ch := c.buf[c.pos]
		c.pos++
		switch s.phase {
		case sentinelMarker:
			switch checkSentinel(c.buf[s.start:c.pos]) {
			case matchNone:
				return s.reject(c)
			case matchFull:
				s.phase = sentinelHeader
			}
		case sentinelHeader:
			switch {
			case isSpace(ch):
			case ch == '{':
				s.jsonStart = c.pos - 1
				s.headerScan.step(ch)
				s.phase = sentinelJSON
			default:
				return s.reject(c)
			}
		case sentinelJSON:
			if s.headerScan.step(ch) {
				s.jsonEnd = c.pos
				s.phase = sentinelClose
			}
		case sentinelClose:
			switch {
			case ch == ']':
				s.closeSeen++
				if s.closeSeen == len(sentinelEnd) {
					return c.openSentinel(s)
				}
			case isSpace(ch) && s.closeSeen == 0:
			default:
				return s.reject(c)
			}
		}
		if c.pos-s.start > maxOpenTagLength {
			return s.reject(c)
		}
	}
	return false
}

func (s *sentinelInitState) reject(c *parseContext) bool {
	c.pos = s.start + completeRunes(c.buf[s.start:c.pos-1])
	c.emitter.appendTextSegment(c.buf[s.start:c.pos])
	return c.toText()
}

func (s *sentinelInitState) finish(c *parseContext) {
	c.emitter.appendTextSegment(c.buf[s.start:])
	c.pos = len(c.buf)
}

func (s *sentinelInitState) anchor(*parseContext) int { return s.start }

func (s *sentinelInitState) shift(n int) {
	s.start -= n
	s.jsonStart -= n
	s.jsonEnd -= n
}

// openSentinel interprets a complete header and starts the body state.
func (c *parseContext) openSentinel(s *sentinelInitState) bool {
	header := c.buf[s.jsonStart:s.jsonEnd]
	raw := c.buf[s.start:c.pos]
	if !gjson.Valid(header) {
		c.degrade("invalid sentinel header", raw)
		return c.toText()
	}
	kind, name, meta, ok := c.sentinelKind(gjson.Parse(header))
	if !ok {
		c.degrade("unsupported sentinel header", raw)
		return c.toText()
	}
	c.emitter.endText()
	c.state = &sentinelBodyState{start: s.start, bodyStart: c.pos, scan: c.pos, open: raw, kind: kind, name: name, meta: meta}
	return true
}

// sentinelKind maps a header to a segment kind. Tool calls naming a raw-body
// tool stream like raw bodies.
func (c *parseContext) sentinelKind(h gjson.Result) (segment.Kind, string, segment.Metadata, bool) {
	meta := segment.Metadata{}
	h.ForEach(func(k, v gjson.Result) bool {
		if k.String() != "type" {
			meta[k.String()] = v.Value()
		}
		return true
	})
	name := h.Get("tool_name").String()
	if name == "" {
		name = h.Get("name").String()
	}
	switch typ := h.Get("type").String(); typ {
	case "", "text":
		return segment.KindText, "", meta, true
	case "write_file", "run_bash":
		if name == "" {
			name = typ
		}
		meta[segment.MetaName] = name
		return segment.Kind(typ), name, meta, true
	case "tool_call", "tool":
		if name == "" {
			return "", "", nil, false
		}
		meta[segment.MetaName] = name
		if kind, ok := c.cfg.RawBodyTools[name]; ok {
			return kind, name, meta, true
		}
		return segment.KindToolCall, name, meta, true
	default:
		return "", "", nil, false
	}
}

// sentinelBodyState captures a sentinel body up to "[[SEG_END]]". Text and
// raw-body kinds stream once a body byte or the end marker arrives; tool-call
// bodies are buffered and parsed as JSON arguments. The markers are content
// of the segment.
type sentinelBodyState struct {
	start     int
	bodyStart int
	scan      int
	open      string // the start marker and header
	kind      segment.Kind
	name      string
	meta      segment.Metadata
	started   bool
}

func (s *sentinelBodyState) buffered() bool { return s.kind == segment.KindToolCall }

func (s *sentinelBodyState) run(c *parseContext) bool {
	if !s.buffered() {
		if !s.started {
			if !c.bodyReady(sentinelStop) {
				return false
			}
			c.emitter.startSegment(s.kind, s.meta.Merge(segment.Metadata{segment.MetaFrameOpen: s.open}))
			_ = c.emitter.appendContent(s.open)
			s.started = true
		}
		if !c.streamUntil(sentinelStop) {
			return false
		}
		c.closeFramed(sentinelStop, s.streamedEnd(c))
		return c.toText()
	}
	idx, partial := findLiteral(c.buf, s.scan, sentinelStop)
	if idx < 0 {
		s.scan = partial
		c.pos = len(c.buf)
		return false
	}
	end := idx + len(sentinelStop)
	raw := c.buf[s.start:end]
	body := strings.TrimSpace(c.buf[s.bodyStart:idx])
	c.pos = end

	args := map[string]any{}
	if body != "" {
		parsed := gjson.Parse(body)
		if !gjson.Valid(body) || !parsed.IsObject() {
			c.degrade("sentinel tool call arguments are not a JSON object", raw, "tool", s.name)
			return c.toText()
		}
		args, _ = parsed.Value().(map[string]any)
	}
	c.emitter.startSegment(segment.KindToolCall, s.meta.Merge(segment.Metadata{segment.MetaFrameOpen: s.open}))
	_ = c.emitter.appendContent(c.buf[s.start:idx])
	c.closeFramed(sentinelStop, segment.ToolCall{Name: s.name, Arguments: args}.Metadata())
	return c.toText()
}

func (s *sentinelBodyState) finish(c *parseContext) {
	if s.buffered() || !s.started {
		c.degrade("unterminated sentinel segment", c.buf[s.start:], "kind", s.kind)
		c.pos = len(c.buf)
		return
	}
	c.flushBody()
	meta := s.streamedEnd(c)
	if meta == nil {
		meta = segment.Metadata{}
	}
	meta[segment.MetaIncomplete] = true
	c.emitter.endSegment(meta)
}

// streamedEnd returns the END metadata of a streamed body.
func (s *sentinelBodyState) streamedEnd(c *parseContext) segment.Metadata {
	if s.kind == segment.KindText {
		return nil
	}
	args := make(map[string]any, len(s.meta))
	for k, v := range s.meta {
		if k != segment.MetaName && k != "tool_name" {
			args[k] = v
		}
	}
	args[bodyArgument(s.kind)] = strings.TrimPrefix(c.emitter.currentContent(), s.open)
	return segment.ToolCall{Name: s.name, Arguments: args}.Metadata()
}

func (s *sentinelBodyState) anchor(c *parseContext) int {
	if s.buffered() || !s.started {
		return s.start
	}
	return c.pos
}

func (s *sentinelBodyState) shift(n int) {
	s.start -= n
	s.bodyStart -= n
	s.scan -= n
}
