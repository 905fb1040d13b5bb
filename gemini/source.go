package gemini

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/segment"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ segment.Source = (*Source)(nil)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("gemini: source closed")

// Source turns a stream of GenerateContentResponse chunks into raw text
// fragments. Text of the first candidate is returned; thought parts are
// skipped and function calls are collected for Calls.
type Source struct {
	pull         func() (*genai.GenerateContentResponse, error, bool)
	stop         func()
	done         bool
	closed       bool
	err          error
	calls        []segment.ToolCall
	finishReason genai.FinishReason
}

// NewSource wraps a genai streaming iterator.
func NewSource(seq iter.Seq2[*genai.GenerateContentResponse, error]) *Source {
	next, stop := iter.Pull2(seq)
	return &Source{pull: next, stop: stop}
}

// Next returns the text of the next response chunk that carries any.
func (s *Source) Next() (string, error) {
	switch {
	case s.closed:
		return "", ErrClosed
	case s.err != nil:
		return "", s.err
	case s.done:
		return "", io.EOF
	}
	for {
		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: %w", err)
			return "", s.err
		}
		if text := s.consume(resp); text != "" {
			return text, nil
		}
	}
}

// consume records function calls and the finish reason of resp and returns
// its text.
func (s *Source) consume(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != "" {
		s.finishReason = cand.FinishReason
	}
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		switch {
		case part == nil || part.Thought:
		case part.FunctionCall != nil:
			s.calls = append(s.calls, toolCall(part.FunctionCall))
		default:
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func toolCall(fc *genai.FunctionCall) segment.ToolCall {
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	return segment.ToolCall{ID: fc.ID, Name: fc.Name, Arguments: args}
}

// Close stops the underlying iterator.
func (s *Source) Close() error {
	if !s.done && s.err == nil {
		s.closed = true
	}
	s.stop()
	return nil
}

// Calls returns the function calls seen so far, in stream order.
func (s *Source) Calls() []segment.ToolCall {
	return s.calls
}

// FinishReason returns the last finish reason reported by the model.
func (s *Source) FinishReason() string {
	return string(s.finishReason)
}
