package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/segment"
)

// eventDTO is the JSON representation of an Event with a type discriminator.
type eventDTO struct {
	Type     string           `json:"type"`
	ID       string           `json:"id"`
	Kind     *string          `json:"kind,omitempty"`
	Delta    *string          `json:"delta,omitempty"`
	Metadata segment.Metadata `json:"metadata,omitempty"`
}

const (
	typeStart   = "start"
	typeContent = "content"
	typeEnd     = "end"
)

// MarshalEvent serializes a single event.
func MarshalEvent(e segment.Event) ([]byte, error) {
	dto, err := marshalEvent(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto)
}

// UnmarshalEvent deserializes a single event.
func UnmarshalEvent(data []byte) (segment.Event, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return unmarshalEvent(dto)
}

// Encoder writes events as JSON lines.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode writes e followed by a newline.
func (e *Encoder) Encode(evt segment.Event) error {
	dto, err := marshalEvent(evt)
	if err != nil {
		return err
	}
	if err := e.enc.Encode(dto); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return nil
}

// DecodeEvents reads a JSON-lines event stream until EOF.
func DecodeEvents(r io.Reader) ([]segment.Event, error) {
	dec := json.NewDecoder(r)
	var events []segment.Event
	for i := 0; ; i++ {
		var dto eventDTO
		err := dec.Decode(&dto)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		evt, err := unmarshalEvent(dto)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, evt)
	}
}

func marshalEvent(e segment.Event) (eventDTO, error) {
	switch v := e.(type) {
	case segment.EventStart:
		kind := string(v.Kind)
		return eventDTO{Type: typeStart, ID: v.ID, Kind: &kind, Metadata: v.Metadata}, nil
	case segment.EventContent:
		return eventDTO{Type: typeContent, ID: v.ID, Delta: &v.Delta}, nil
	case segment.EventEnd:
		return eventDTO{Type: typeEnd, ID: v.ID, Metadata: v.Metadata}, nil
	default:
		return eventDTO{}, fmt.Errorf("unknown event type: %T", e)
	}
}

func unmarshalEvent(dto eventDTO) (segment.Event, error) {
	if dto.ID == "" {
		return nil, fmt.Errorf("%s event: missing id", dto.Type)
	}
	switch dto.Type {
	case typeStart:
		if dto.Kind == nil || *dto.Kind == "" {
			return nil, fmt.Errorf("start event %s: missing kind", dto.ID)
		}
		return segment.EventStart{ID: dto.ID, Kind: segment.Kind(*dto.Kind), Metadata: dto.Metadata}, nil
	case typeContent:
		var delta string
		if dto.Delta != nil {
			delta = *dto.Delta
		}
		return segment.EventContent{ID: dto.ID, Delta: delta}, nil
	case typeEnd:
		return segment.EventEnd{ID: dto.ID, Metadata: dto.Metadata}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", dto.Type)
	}
}
