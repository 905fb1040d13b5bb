package gemini

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"
)

// DecodeResponses replays recorded GenerateContentResponse chunks from r.
// It accepts a JSON array of responses, as returned by streamGenerateContent,
// or a sequence of JSON objects optionally prefixed with "data:" as in the
// SSE form.
func DecodeResponses(r io.Reader) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		br := bufio.NewReader(r)
		first, err := peekNonSpace(br)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		if first == '[' {
			decodeArray(json.NewDecoder(br), yield)
			return
		}
		decodeLines(br, yield)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func decodeArray(dec *json.Decoder, yield func(*genai.GenerateContentResponse, error) bool) {
	if _, err := dec.Token(); err != nil {
		yield(nil, fmt.Errorf("decode responses: %w", err))
		return
	}
	for dec.More() {
		var resp genai.GenerateContentResponse
		if err := dec.Decode(&resp); err != nil {
			yield(nil, fmt.Errorf("decode responses: %w", err))
			return
		}
		if !yield(&resp, nil) {
			return
		}
	}
}

func decodeLines(br *bufio.Reader, yield func(*genai.GenerateContentResponse, error) bool) {
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var resp genai.GenerateContentResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			yield(nil, fmt.Errorf("decode responses: %w", err))
			return
		}
		if !yield(&resp, nil) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		yield(nil, fmt.Errorf("decode responses: %w", err))
	}
}
