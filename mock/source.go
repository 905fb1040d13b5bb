package mock

import (
	"io"

	"github.com/fwojciec/segment"
)

// Interface compliance check.
var _ segment.Source = (*Source)(nil)

// Source is a test double for segment.Source.
// NextFn panics when nil to catch missing setup. CloseFn is nil-safe (no-op)
// because test code commonly calls defer src.Close().
type Source struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Source) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Source) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Fragments returns a Source that yields fragments in order, then io.EOF.
func Fragments(fragments ...string) *Source {
	i := 0
	return &Source{
		NextFn: func() (string, error) {
			if i >= len(fragments) {
				return "", io.EOF
			}
			i++
			return fragments[i-1], nil
		},
	}
}
