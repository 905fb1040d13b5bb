package jsonshape

import (
	"encoding/json"

	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

var _ Shape = Gemini{}

// Gemini decodes function calls: a bare {"name","args"} object, one wrapped in
// functionCall or function_call, or a parts array of such wrappers.
type Gemini struct{}

// Parse implements Shape.
func (Gemini) Parse(raw []byte) []segment.ToolCall {
	return each(gjson.ParseBytes(raw), geminiCalls)
}

func geminiCalls(v gjson.Result) []segment.ToolCall {
	if !v.IsObject() {
		return nil
	}
	if parts := v.Get("parts"); parts.IsArray() {
		return each(parts, geminiCalls)
	}
	for _, key := range []string{"functionCall", "function_call"} {
		if fc := v.Get(key); fc.IsObject() {
			return geminiCalls(fc)
		}
	}

	var fc genai.FunctionCall
	if err := json.Unmarshal([]byte(v.Raw), &fc); err != nil || fc.Name == "" {
		return nil
	}
	args := fc.Args
	if args == nil {
		args = arguments(v.Get("arguments"))
	}
	return []segment.ToolCall{{ID: fc.ID, Name: fc.Name, Arguments: args}}
}
