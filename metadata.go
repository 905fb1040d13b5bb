package segment

// Metadata keys with defined meaning.
const (
	MetaName       = "name"
	MetaArguments  = "arguments"
	MetaCallID     = "call_id"
	MetaIncomplete = "incomplete"

	// MetaFrameOpen and MetaFrameClose hold the delimiters that frame a
	// segment's body. They are part of the segment content.
	MetaFrameOpen  = "frame_open"
	MetaFrameClose = "frame_close"
)

// Metadata is the open attribute map attached to EventStart and EventEnd.
type Metadata map[string]any

// Clone returns a shallow copy. Cloning nil returns nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a copy of m with every key of patch applied on top.
func (m Metadata) Merge(patch Metadata) Metadata {
	if len(patch) == 0 {
		return m.Clone()
	}
	out := make(Metadata, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// ToolCall extracts the resolved invocation stored under MetaName and
// MetaArguments. It reports false when no name is present.
func (m Metadata) ToolCall() (ToolCall, bool) {
	name, _ := m[MetaName].(string)
	if name == "" {
		return ToolCall{}, false
	}
	args, _ := m[MetaArguments].(map[string]any)
	if args == nil {
		args = map[string]any{}
	}
	id, _ := m[MetaCallID].(string)
	return ToolCall{ID: id, Name: name, Arguments: args}, true
}

// ToolCall is a fully resolved tool invocation. ID is set when the model
// supplied a call id.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Metadata returns the invocation in the shape carried by EventEnd.
func (c ToolCall) Metadata() Metadata {
	args := c.Arguments
	if args == nil {
		args = map[string]any{}
	}
	m := Metadata{MetaName: c.Name, MetaArguments: args}
	if c.ID != "" {
		m[MetaCallID] = c.ID
	}
	return m
}
