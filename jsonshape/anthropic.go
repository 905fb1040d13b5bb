package jsonshape

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

var _ Shape = Anthropic{}

// Anthropic decodes tool_use content blocks. A message with a content array
// yields one call per tool_use block; other block types are skipped.
type Anthropic struct{}

// Parse implements Shape.
func (Anthropic) Parse(raw []byte) []segment.ToolCall {
	return each(gjson.ParseBytes(raw), anthropicCalls)
}

func anthropicCalls(v gjson.Result) []segment.ToolCall {
	if !v.IsObject() {
		return nil
	}
	if content := v.Get("content"); content.IsArray() {
		return each(content, anthropicCalls)
	}
	if typ := v.Get("type"); typ.Exists() && typ.String() != "tool_use" {
		return nil
	}

	var block anthropic.ToolUseBlock
	if err := json.Unmarshal([]byte(v.Raw), &block); err != nil {
		block = anthropic.ToolUseBlock{}
	}
	name := block.Name
	if name == "" {
		name = firstString(v, "name")
	}
	if name == "" {
		return nil
	}
	id := block.ID
	if id == "" {
		id = firstString(v, "id")
	}
	args := firstPresent(v, "input", "arguments")
	if len(block.Input) > 0 {
		args = gjson.ParseBytes(block.Input)
	}
	return []segment.ToolCall{{ID: id, Name: name, Arguments: arguments(args)}}
}
