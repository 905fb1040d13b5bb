// Package fs provides file-backed input for the parser: a chunked
// [segment.Source] over recorded model output and glob expansion of input
// paths.
package fs

import "errors"

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("fs: source closed")

// ErrNoMatch is returned by Expand when a pattern matches no files.
var ErrNoMatch = errors.New("fs: no files match pattern")
