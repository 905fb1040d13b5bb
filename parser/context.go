package parser

import (
	"log/slog"
	"strings"

	"github.com/fwojciec/segment"
)

// parseContext is the mutable engine state shared by every state: the
// accumulation buffer, the read cursor, the active state, the configuration
// and the emitter. It is owned by exactly one Parser.
type parseContext struct {
	buf      string
	pos      int
	state    state
	cfg      Config
	emitter  *emitter
	logger   *slog.Logger
	triggers string
}

func newContext(cfg Config) *parseContext {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &parseContext{
		state:    &textState{},
		cfg:      cfg,
		emitter:  newEmitter(cfg.IDPrefix),
		logger:   logger,
		triggers: triggerSet(cfg),
	}
}

// triggerSet returns the characters that can open a structured segment.
func triggerSet(cfg Config) string {
	if !cfg.ParseToolCalls {
		return ""
	}
	var b strings.Builder
	for _, s := range cfg.Strategies {
		switch s {
		case segment.StrategyXMLTag:
			b.WriteByte('<')
		case segment.StrategyJSONTool:
			b.WriteString("{[")
		case segment.StrategySentinel:
			b.WriteByte('[')
		}
	}
	return b.String()
}

// trigger returns the initialization state for a trigger byte at index at,
// or nil. The first configured strategy claiming ch wins.
func (c *parseContext) trigger(ch byte, at int) state {
	for _, s := range c.cfg.Strategies {
		switch {
		case s == segment.StrategyXMLTag && ch == '<':
			return &xmlInitState{start: at}
		case s == segment.StrategyJSONTool && (ch == '{' || ch == '['):
			return &jsonInitState{start: at}
		case s == segment.StrategySentinel && ch == '[':
			return &sentinelInitState{start: at}
		}
	}
	return nil
}

// run drives the active state until it cannot make progress without more
// input.
func (c *parseContext) run() {
	for c.state.run(c) {
	}
}

// finalize flushes the active state and closes any open text segment.
func (c *parseContext) finalize() {
	c.state.finish(c)
	c.state = &textState{}
	c.emitter.endText()
}

// compact drops the prefix of the buffer that no state refers to anymore.
func (c *parseContext) compact() {
	mark := c.state.anchor(c)
	if mark <= 0 {
		return
	}
	c.buf = c.buf[mark:]
	c.pos -= mark
	c.state.shift(mark)
}

// toText returns control to the text scanner.
func (c *parseContext) toText() bool {
	c.state = &textState{}
	return true
}

// degrade emits raw as text because a structured candidate turned out to be
// malformed or incomplete.
func (c *parseContext) degrade(reason, raw string, args ...any) {
	c.logger.Debug("structured segment degraded to text", append([]any{"reason", reason, "bytes", len(raw)}, args...)...)
	c.emitter.appendTextSegment(raw)
}

// streamUntil emits body bytes from the cursor as content of the open
// segment, up to lit. A trailing partial lit and an incomplete UTF-8
// sequence are held back. It reports whether lit was found, in which case
// the cursor is moved past it.
func (c *parseContext) streamUntil(lit string) bool {
	idx, partial := findLiteral(c.buf, c.pos, lit)
	end := idx
	if idx < 0 {
		end = c.pos + completeRunes(c.buf[c.pos:partial])
	}
	_ = c.emitter.appendContent(c.buf[c.pos:end])
	if idx < 0 {
		c.pos = end
		return false
	}
	c.pos = idx + len(lit)
	return true
}

// bodyReady reports whether streamUntil(lit) would emit content or find lit.
func (c *parseContext) bodyReady(lit string) bool {
	idx, partial := findLiteral(c.buf, c.pos, lit)
	return idx >= 0 || completeRunes(c.buf[c.pos:partial]) > 0
}

// closeFramed emits the closing delimiter lit as content and ends the open
// segment with meta, recording lit under MetaFrameClose.
func (c *parseContext) closeFramed(lit string, meta segment.Metadata) {
	_ = c.emitter.appendContent(lit)
	c.emitter.endSegment(meta.Merge(segment.Metadata{segment.MetaFrameClose: lit}))
}

// flushBody emits every remaining byte as content of the open segment.
func (c *parseContext) flushBody() {
	_ = c.emitter.appendContent(c.buf[c.pos:])
	c.pos = len(c.buf)
}
