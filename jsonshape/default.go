package jsonshape

import (
	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

var _ Shape = Default{}

// Default is the permissive shape used when the provider is unknown. It reads
// the name from name, tool, function.name or function, and the arguments from
// arguments, parameters, function.arguments, args or input. A tool_calls array
// and a tool object are descended into.
type Default struct{}

// Parse implements Shape.
func (Default) Parse(raw []byte) []segment.ToolCall {
	return each(gjson.ParseBytes(raw), defaultCalls)
}

func defaultCalls(v gjson.Result) []segment.ToolCall {
	if !v.IsObject() {
		return nil
	}
	if calls := v.Get("tool_calls"); calls.IsArray() {
		return each(calls, defaultCalls)
	}
	if tool := v.Get("tool"); tool.IsObject() {
		return defaultCalls(tool)
	}
	name := firstString(v, "name", "tool", "function.name", "function")
	if name == "" {
		return nil
	}
	args := firstPresent(v, "arguments", "parameters", "function.arguments", "args", "input")
	return []segment.ToolCall{{
		ID:        firstString(v, "id", "call_id"),
		Name:      name,
		Arguments: arguments(args),
	}}
}
