package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/fwojciec/segment"
	"github.com/rivo/uniseg"
)

// Interface compliance check.
var _ segment.Source = (*Source)(nil)

const (
	// DefaultChunkSize is the fragment size used when none is configured.
	DefaultChunkSize = 64

	readSize = 4096
)

// Source replays a reader as a sequence of fragments, simulating the arrival
// of a streamed model response. In byte mode fragments may end inside a
// multi-byte rune; in grapheme mode each fragment holds whole grapheme
// clusters.
type Source struct {
	r         io.Reader
	closer    io.Closer
	chunk     int
	graphemes bool

	buf    []byte
	eof    bool
	closed bool
	err    error
}

// Option configures a [Source].
type Option func(*Source)

// WithChunkSize sets the fragment size in bytes, or in grapheme clusters when
// grapheme mode is on. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.chunk = n
		}
	}
}

// WithGraphemes switches fragment sizing to grapheme clusters.
func WithGraphemes(enabled bool) Option {
	return func(s *Source) { s.graphemes = enabled }
}

// NewSource returns a Source reading from r. Close does not close r.
func NewSource(r io.Reader, opts ...Option) *Source {
	s := &Source{r: r, chunk: DefaultChunkSize}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open returns a Source over the named file. Close closes the file.
func Open(path string, opts ...Option) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fs: %w", err)
	}
	s := NewSource(f, opts...)
	s.closer = f
	return s, nil
}

// Next returns the next fragment, or io.EOF when the input is exhausted.
func (s *Source) Next() (string, error) {
	switch {
	case s.closed:
		return "", ErrClosed
	case s.err != nil:
		return "", s.err
	}
	for {
		if out, ok := s.take(); ok {
			return out, nil
		}
		if s.eof {
			return "", io.EOF
		}
		if err := s.fill(); err != nil {
			return "", err
		}
	}
}

// Close releases the underlying file, if the Source opened one.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Source) fill() error {
	p := make([]byte, readSize)
	n, err := s.r.Read(p)
	s.buf = append(s.buf, p[:n]...)
	switch {
	case errors.Is(err, io.EOF):
		s.eof = true
	case err != nil:
		s.err = fmt.Errorf("fs: read: %w", err)
		return s.err
	}
	return nil
}

// take cuts the next fragment from buf when enough input is buffered.
func (s *Source) take() (string, bool) {
	end := 0
	if s.graphemes {
		end = s.graphemeEnd()
	} else if len(s.buf) >= s.chunk {
		end = s.chunk
	} else if s.eof {
		end = len(s.buf)
	}
	if end == 0 {
		return "", false
	}
	out := string(s.buf[:end])
	s.buf = s.buf[end:]
	return out, true
}

// graphemeEnd returns the byte length of the first chunk clusters in buf, or
// 0 when fewer are known to be complete. Before EOF the last cluster in buf
// may still grow, so it only counts once a complete rune follows it.
func (s *Source) graphemeEnd() int {
	rest := s.buf
	if !s.eof {
		rest = rest[:completeLen(rest)]
	}
	state := -1
	n, end := 0, 0
	for len(rest) > 0 && n < s.chunk {
		cluster, next, _, newState := uniseg.FirstGraphemeCluster(rest, state)
		if len(next) == 0 && !s.eof {
			break
		}
		end += len(cluster)
		rest, state = next, newState
		n++
	}
	if n == s.chunk || s.eof {
		return end
	}
	return 0
}

// completeLen returns the length of b without a trailing partial rune.
func completeLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
