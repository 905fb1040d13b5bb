package segment

import "strings"

// Segment is a reassembled segment: the fold of its START, CONTENT and END
// events.
type Segment struct {
	ID       string
	Kind     Kind
	Content  string
	Metadata Metadata
}

// ToolCall returns the resolved invocation of a tool-call segment.
func (s Segment) ToolCall() (ToolCall, bool) {
	if !s.Kind.IsToolCall() {
		return ToolCall{}, false
	}
	return s.Metadata.ToolCall()
}

// Body returns the content without the delimiters recorded under
// MetaFrameOpen and MetaFrameClose.
func (s Segment) Body() string {
	body := s.Content
	if open, _ := s.Metadata[MetaFrameOpen].(string); open != "" {
		body = strings.TrimPrefix(body, open)
	}
	if closing, _ := s.Metadata[MetaFrameClose].(string); closing != "" {
		body = strings.TrimSuffix(body, closing)
	}
	return body
}

// Reassemble folds an event stream back into segments in START order.
// END metadata is merged over START metadata. Events for ids that were never
// started are ignored. Segments that were started but not ended are still
// returned.
func Reassemble(events []Event) []Segment {
	var (
		order   []string
		byID    = make(map[string]*Segment)
		content = make(map[string]*strings.Builder)
	)
	for _, evt := range events {
		switch e := evt.(type) {
		case EventStart:
			if _, ok := byID[e.ID]; ok {
				continue
			}
			order = append(order, e.ID)
			byID[e.ID] = &Segment{ID: e.ID, Kind: e.Kind, Metadata: e.Metadata.Clone()}
			content[e.ID] = &strings.Builder{}
		case EventContent:
			if b, ok := content[e.ID]; ok {
				b.WriteString(e.Delta)
			}
		case EventEnd:
			if s, ok := byID[e.ID]; ok && len(e.Metadata) > 0 {
				s.Metadata = s.Metadata.Merge(e.Metadata)
			}
		}
	}
	segments := make([]Segment, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.Content = content[id].String()
		segments = append(segments, *s)
	}
	return segments
}

// Text concatenates the content of every segment in order.
func Text(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Content)
	}
	return b.String()
}
