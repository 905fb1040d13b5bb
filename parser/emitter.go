package parser

import (
	"strconv"
	"strings"

	"github.com/fwojciec/segment"
)

const defaultIDPrefix = "seg"

// emitter owns segment id generation and the currently open segment, and
// turns state-machine actions into well-formed START, CONTENT*, END events.
type emitter struct {
	prefix string
	n      int
	events []segment.Event
	open   *openSegment
}

type openSegment struct {
	id       string
	kind     segment.Kind
	content  strings.Builder
	metadata segment.Metadata
}

func newEmitter(prefix string) *emitter {
	if prefix == "" {
		prefix = defaultIDPrefix
	}
	return &emitter{prefix: prefix}
}

// startSegment opens a new segment and returns its id. A segment that is
// still open is ended first.
func (e *emitter) startSegment(kind segment.Kind, meta segment.Metadata) string {
	if e.open != nil {
		e.endSegment(nil)
	}
	e.n++
	id := e.prefix + "_" + strconv.Itoa(e.n)
	e.open = &openSegment{id: id, kind: kind, metadata: meta.Clone()}
	e.events = append(e.events, segment.EventStart{ID: id, Kind: kind, Metadata: meta.Clone()})
	return id
}

// appendContent emits a delta for the open segment. Empty deltas are dropped.
func (e *emitter) appendContent(delta string) error {
	if e.open == nil {
		return segment.ErrNoActiveSegment
	}
	if delta == "" {
		return nil
	}
	e.open.content.WriteString(delta)
	e.events = append(e.events, segment.EventContent{ID: e.open.id, Delta: delta})
	return nil
}

// updateMetadata merges patch into the open segment's metadata. The merged
// result is reported on EventEnd.
func (e *emitter) updateMetadata(patch segment.Metadata) error {
	if e.open == nil {
		return segment.ErrNoActiveSegment
	}
	e.open.metadata = e.open.metadata.Merge(patch)
	return nil
}

// endSegment closes the open segment, merging meta into its metadata. It
// reports false, and does nothing, when no segment is open.
func (e *emitter) endSegment(meta segment.Metadata) (string, bool) {
	if e.open == nil {
		return "", false
	}
	id := e.open.id
	var final segment.Metadata
	if len(e.open.metadata)+len(meta) > 0 {
		final = e.open.metadata.Merge(meta)
	}
	e.events = append(e.events, segment.EventEnd{ID: id, Metadata: final})
	e.open = nil
	return id, true
}

// appendTextSegment appends text to the open TEXT segment, opening one when
// needed. Empty input is ignored.
func (e *emitter) appendTextSegment(text string) {
	if text == "" {
		return
	}
	if e.open == nil || e.open.kind != segment.KindText {
		e.startSegment(segment.KindText, nil)
	}
	_ = e.appendContent(text)
}

// endText closes the open segment if it is a TEXT segment.
func (e *emitter) endText() {
	if e.open != nil && e.open.kind == segment.KindText {
		e.endSegment(nil)
	}
}

// drainEvents returns and clears the events produced so far.
func (e *emitter) drainEvents() []segment.Event {
	events := e.events
	e.events = nil
	return events
}

func (e *emitter) currentID() string {
	if e.open == nil {
		return ""
	}
	return e.open.id
}

func (e *emitter) currentKind() (segment.Kind, bool) {
	if e.open == nil {
		return "", false
	}
	return e.open.kind, true
}

func (e *emitter) currentContent() string {
	if e.open == nil {
		return ""
	}
	return e.open.content.String()
}

func (e *emitter) currentMetadata() segment.Metadata {
	if e.open == nil {
		return nil
	}
	return e.open.metadata.Clone()
}
