// Package mock provides function-field test doubles for the segment
// interfaces.
package mock

import "github.com/fwojciec/segment"

// Interface compliance check.
var _ segment.Parser = (*Parser)(nil)

// Parser is a test double for segment.Parser.
// FeedFn panics when nil to catch missing setup. FinalizeFn is nil-safe and
// returns no events, since most tests only care about what Feed sees.
type Parser struct {
	FeedFn     func(fragment string) ([]segment.Event, error)
	FinalizeFn func() ([]segment.Event, error)
}

// Feed delegates to FeedFn.
func (p *Parser) Feed(fragment string) ([]segment.Event, error) {
	return p.FeedFn(fragment)
}

// Finalize delegates to FinalizeFn. Returns nil, nil when FinalizeFn is not
// set.
func (p *Parser) Finalize() ([]segment.Event, error) {
	if p.FinalizeFn == nil {
		return nil, nil
	}
	return p.FinalizeFn()
}
