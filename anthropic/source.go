package anthropic

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/segment"
	"github.com/tidwall/gjson"
)

// Interface compliance check.
var _ segment.Source = (*Source)(nil)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("anthropic: source closed")

// maxLineSize bounds a single SSE line.
const maxLineSize = 1 << 20

// Source reads text fragments from an SSE response body.
type Source struct {
	body       io.ReadCloser
	scanner    *bufio.Scanner
	state      streamState
	err        error
	blocks     map[int64]*toolBlock
	calls      []segment.ToolCall
	stopReason string
}

// toolBlock accumulates a tool_use content block.
type toolBlock struct {
	id    string
	name  string
	input strings.Builder
}

// NewSource returns a Source reading SSE events from body. The Source owns
// body and closes it on Close.
func NewSource(body io.ReadCloser) *Source {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Source{
		body:    body,
		scanner: scanner,
		blocks:  make(map[int64]*toolBlock),
	}
}

// Next returns the next text fragment. It returns io.EOF after message_stop.
func (s *Source) Next() (string, error) {
	switch s.state {
	case stateComplete:
		return "", io.EOF
	case stateError:
		return "", s.err
	case stateClosed:
		return "", ErrClosed
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return "", s.err
		}
		s.state = stateStreaming

		text, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return "", s.err
		}
		if s.state == stateComplete {
			return "", io.EOF
		}
		if text != "" {
			return text, nil
		}
	}
}

// Close closes the underlying body.
func (s *Source) Close() error {
	if s.state != stateComplete && s.state != stateError {
		s.state = stateClosed
	}
	return s.body.Close()
}

// Calls returns the tool_use blocks completed so far, in stream order.
func (s *Source) Calls() []segment.ToolCall {
	return s.calls
}

// StopReason returns the stop reason reported by message_delta, if any.
func (s *Source) StopReason() string {
	return s.stopReason
}

func (s *Source) terminate(err error) {
	s.state = stateError
	if errors.Is(err, io.EOF) {
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		return
	}
	s.err = err
}

// readSSEEvent reads lines until a complete SSE event is assembled and
// returns its type and data payload.
func (s *Source) readSSEEvent() (string, string, error) {
	var eventType string
	var data strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if data.Len() > 0 {
				return eventType, data.String(), nil
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
		// Comments (":") and unknown fields are ignored.
	}
	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}
	if data.Len() > 0 {
		return eventType, data.String(), nil
	}
	return "", "", io.EOF
}

// processEvent applies one SSE event and returns the text it carries.
func (s *Source) processEvent(eventType, data string) (string, error) {
	switch eventType {
	case "ping":
		return "", nil
	case "error":
		return "", fmt.Errorf("anthropic: %s: %s",
			gjson.Get(data, "error.type").String(), gjson.Get(data, "error.message").String())
	}

	var evt anthropic.MessageStreamEventUnion
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse %s: %w", eventType, err)
	}

	switch e := evt.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		if block, ok := e.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
			s.blocks[e.Index] = &toolBlock{id: block.ID, name: block.Name}
		}
	case anthropic.ContentBlockDeltaEvent:
		switch delta := e.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return delta.Text, nil
		case anthropic.InputJSONDelta:
			if b := s.blocks[e.Index]; b != nil {
				b.input.WriteString(delta.PartialJSON)
			}
		}
	case anthropic.ContentBlockStopEvent:
		if b := s.blocks[e.Index]; b != nil {
			s.calls = append(s.calls, b.call())
			delete(s.blocks, e.Index)
		}
	case anthropic.MessageDeltaEvent:
		if e.Delta.StopReason != "" {
			s.stopReason = string(e.Delta.StopReason)
		}
	case anthropic.MessageStopEvent:
		s.state = stateComplete
	}
	return "", nil
}

func (b *toolBlock) call() segment.ToolCall {
	args := map[string]any{}
	if raw := b.input.String(); gjson.Valid(raw) {
		if m, ok := gjson.Parse(raw).Value().(map[string]any); ok {
			args = m
		}
	}
	return segment.ToolCall{ID: b.id, Name: b.name, Arguments: args}
}
