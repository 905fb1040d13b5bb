// Package anthropic implements [segment.Source] over an Anthropic Messages
// API streaming response.
//
// The SSE body is read one event at a time. Text deltas become raw fragments
// for the segment parser; tool_use blocks that the API delivers out of band
// are assembled into [segment.ToolCall] values. Thinking deltas are not model
// output and are skipped.
package anthropic

// streamState tracks the lifecycle of a Source.
type streamState int

const (
	stateNew streamState = iota
	stateStreaming
	stateComplete
	stateError
	stateClosed
)
