package parser

import "github.com/fwojciec/segment"

// CheckJSONSignature exports checkJSONSignature for testing.
func CheckJSONSignature(buf string, patterns []string) string {
	return checkJSONSignature(buf, patterns).String()
}

// CheckXMLTag exports checkXMLTag for testing.
func CheckXMLTag(buf string) string {
	return checkXMLTag(buf).String()
}

// CheckSentinel exports checkSentinel for testing.
func CheckSentinel(buf string) string {
	return checkSentinel(buf).String()
}

// ParseXMLArguments exports parseXMLArguments for testing.
func ParseXMLArguments(body string) (map[string]any, error) {
	return parseXMLArguments(body)
}

// FindLiteral exports findLiteral for testing.
func FindLiteral(s string, from int, lit string) (int, int) {
	return findLiteral(s, from, lit)
}

// CompleteRunes exports completeRunes for testing.
func CompleteRunes(s string) int {
	return completeRunes(s)
}

// ErrMalformedXML exports errMalformedXML for testing.
var ErrMalformedXML = errMalformedXML

// Emitter exposes the event emitter for testing.
type Emitter struct{ e *emitter }

// NewEmitter returns an Emitter with the given id prefix.
func NewEmitter(prefix string) *Emitter { return &Emitter{e: newEmitter(prefix)} }

func (e *Emitter) Start(kind segment.Kind, meta segment.Metadata) string {
	return e.e.startSegment(kind, meta)
}
func (e *Emitter) Append(delta string) error { return e.e.appendContent(delta) }
func (e *Emitter) Update(patch segment.Metadata) error { return e.e.updateMetadata(patch) }
func (e *Emitter) End(meta segment.Metadata) (string, bool) { return e.e.endSegment(meta) }
func (e *Emitter) AppendText(text string) { e.e.appendTextSegment(text) }
func (e *Emitter) Drain() []segment.Event { return e.e.drainEvents() }
func (e *Emitter) CurrentID() string { return e.e.currentID() }
func (e *Emitter) CurrentContent() string { return e.e.currentContent() }
func (e *Emitter) CurrentMetadata() segment.Metadata { return e.e.currentMetadata() }
func (e *Emitter) CurrentKind() (segment.Kind, bool) { return e.e.currentKind() }
