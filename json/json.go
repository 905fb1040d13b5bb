// Package json encodes parser output as JSON: event streams as JSON lines and
// reassembled transcripts as a versioned envelope.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/segment"
)

// Transcript is a persisted parse result.
type Transcript struct {
	Preset    string
	Provider  string
	CreatedAt time.Time
	Segments  []segment.Segment
}

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version   int          `json:"version"`
	Preset    string       `json:"preset,omitempty"`
	Provider  string       `json:"provider,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Segments  []segmentDTO `json:"segments"`
}

// segmentDTO is the JSON representation of a Segment.
type segmentDTO struct {
	ID       string           `json:"id"`
	Kind     string           `json:"kind"`
	Content  string           `json:"content"`
	Metadata segment.Metadata `json:"metadata,omitempty"`
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(t Transcript) ([]byte, error) {
	env := envelope{
		Version:   1,
		Preset:    t.Preset,
		Provider:  t.Provider,
		CreatedAt: t.CreatedAt,
		Segments:  make([]segmentDTO, len(t.Segments)),
	}
	for i, s := range t.Segments {
		if s.ID == "" {
			return nil, fmt.Errorf("segment %d: missing id", i)
		}
		env.Segments[i] = segmentDTO{
			ID:       s.ID,
			Kind:     string(s.Kind),
			Content:  s.Content,
			Metadata: s.Metadata,
		}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope
// format.
func UnmarshalTranscript(data []byte) (Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	segs := make([]segment.Segment, len(env.Segments))
	for i, dto := range env.Segments {
		if dto.ID == "" {
			return Transcript{}, fmt.Errorf("segment %d: missing id", i)
		}
		if dto.Kind == "" {
			return Transcript{}, fmt.Errorf("segment %d: missing kind", i)
		}
		segs[i] = segment.Segment{
			ID:       dto.ID,
			Kind:     segment.Kind(dto.Kind),
			Content:  dto.Content,
			Metadata: dto.Metadata,
		}
	}
	return Transcript{
		Preset:    env.Preset,
		Provider:  env.Provider,
		CreatedAt: env.CreatedAt,
		Segments:  segs,
	}, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, t Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
