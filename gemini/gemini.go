// Package gemini implements [segment.Source] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming responses arrive as an
// iter.Seq2 iterator, which is wrapped into the pull-based [segment.Source]
// interface. Recorded responses can be replayed with [DecodeResponses].
package gemini

const defaultModel = "gemini-3.1-pro-preview"
