package parser

import (
	"strings"
	"unicode"
)

// match is the three-way classification of a buffered signature.
type match int

const (
	matchNone    match = iota // Cannot be the start of a structured segment.
	matchPartial              // Consistent with a signature; keep buffering.
	matchFull                 // A signature was recognised.
)

func (m match) String() string {
	switch m {
	case matchPartial:
		return "partial"
	case matchFull:
		return "match"
	default:
		return "no_match"
	}
}

const (
	// genericPrefixLimit bounds how long a stripped buffer may rely on the
	// generic JSON prefixes below before it has to match a configured pattern.
	genericPrefixLimit = 8

	// maxSignatureLength caps the raw bytes an initialization state buffers
	// before giving up on a JSON or sentinel signature.
	maxSignatureLength = 256

	// maxOpenTagLength caps the raw bytes of an XML opening tag.
	maxOpenTagLength = 1024
)

// genericJSONPrefixes are ambiguous openings that stay partial while short,
// so the first characters of an unknown-shaped call are not rejected early.
var genericJSONPrefixes = []string{"", "{", "[", `{"`, "[{", `{"n`, `{"na`, `{"nam`}

// checkJSONSignature classifies buf against the whitespace-stripped patterns.
// Full matches are checked first, so a buffer equal to a pattern is already
// a match and jsonToolState takes over without waiting for another byte.
func checkJSONSignature(buf string, patterns []string) match {
	if len(buf) > maxSignatureLength {
		return matchNone
	}
	norm := stripSpace(buf)
	for _, p := range patterns {
		if strings.HasPrefix(norm, stripSpace(p)) {
			return matchFull
		}
	}
	for _, p := range patterns {
		if strings.HasPrefix(stripSpace(p), norm) {
			return matchPartial
		}
	}
	if len(norm) < genericPrefixLimit {
		for _, p := range genericJSONPrefixes {
			if norm == p {
				return matchPartial
			}
		}
	}
	return matchNone
}

const (
	toolTagName  = "tool"
	toolOpen     = "<" + toolTagName
	toolClose    = "</" + toolTagName + ">"
	sentinelOpen = "[[SEG_START"
	sentinelEnd  = "]]"
	sentinelStop = "[[SEG_END]]"
)

// checkXMLTag classifies buf, which starts with '<', against the tool tag.
// A full match requires the tag name to be terminated so that "<tools" or
// "<toolbox>" stay literal text.
func checkXMLTag(buf string) match {
	if len(buf) <= len(toolOpen) {
		if strings.HasPrefix(toolOpen, buf) {
			return matchPartial
		}
		return matchNone
	}
	if !strings.HasPrefix(buf, toolOpen) {
		return matchNone
	}
	switch buf[len(toolOpen)] {
	case ' ', '\t', '\n', '\r', '>', '/':
		return matchFull
	default:
		return matchNone
	}
}

// checkSentinel classifies buf, which starts with '[', against the sentinel
// start marker.
func checkSentinel(buf string) match {
	if len(buf) < len(sentinelOpen) {
		if strings.HasPrefix(sentinelOpen, buf) {
			return matchPartial
		}
		return matchNone
	}
	if strings.HasPrefix(buf, sentinelOpen) {
		return matchFull
	}
	return matchNone
}

func stripSpace(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
