package segment

import "errors"

// Sentinel errors for caller-contract violations. Malformed model output is
// never reported through these; it degrades to text segments instead.
var (
	// ErrValidation indicates a parser configuration failed validation.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyFinalized indicates Feed or Finalize was called after Finalize.
	ErrAlreadyFinalized = errors.New("parser already finalized")

	// ErrNoActiveSegment indicates content was appended with no segment open.
	ErrNoActiveSegment = errors.New("no active segment")

	// ErrUnknownStrategy indicates an unknown parser preset name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
