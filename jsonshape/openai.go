package jsonshape

import (
	"encoding/json"

	"github.com/fwojciec/segment"
	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"
)

var _ Shape = OpenAI{}

// OpenAI decodes chat-completions tool calls: a tool_calls array, a tool
// object, or a bare {"id","type","function"} element. Arguments are usually a
// JSON-encoded string and get a second parse pass.
type OpenAI struct{}

// Parse implements Shape.
func (OpenAI) Parse(raw []byte) []segment.ToolCall {
	return each(gjson.ParseBytes(raw), openAICalls)
}

func openAICalls(v gjson.Result) []segment.ToolCall {
	if !v.IsObject() {
		return nil
	}
	if calls := v.Get("tool_calls"); calls.IsArray() {
		return each(calls, openAICalls)
	}
	if tool := v.Get("tool"); tool.IsObject() {
		return openAICalls(tool)
	}
	fn := v.Get("function")
	if !fn.IsObject() {
		fn = v
	}

	var call openai.ChatCompletionMessageToolCall
	if err := json.Unmarshal([]byte(v.Raw), &call); err != nil {
		call = openai.ChatCompletionMessageToolCall{}
	}
	name := call.Function.Name
	if name == "" {
		name = firstString(fn, "name")
	}
	if name == "" {
		return nil
	}
	id := call.ID
	if id == "" {
		id = firstString(v, "id")
	}
	return []segment.ToolCall{{
		ID:        id,
		Name:      name,
		Arguments: arguments(firstPresent(fn, "arguments", "parameters")),
	}}
}
