package parser

import (
	"strings"
	"unicode/utf8"
)

// jsonScanner tracks bracket depth over a JSON value one byte at a time.
// Brackets inside string literals are not counted.
type jsonScanner struct {
	depth    int
	inString bool
	escaped  bool
}

// step consumes one byte and reports whether the outermost value closed.
func (s *jsonScanner) step(ch byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case ch == '\\':
			s.escaped = true
		case ch == '"':
			s.inString = false
		}
		return false
	}
	switch ch {
	case '"':
		s.inString = true
	case '{', '[':
		s.depth++
	case '}', ']':
		s.depth--
		return s.depth <= 0
	}
	return false
}

// findLiteral searches s from index from for lit. It returns the index of
// the first full occurrence, or -1 together with the index where a trailing
// partial occurrence begins (len(s) when there is none).
func findLiteral(s string, from int, lit string) (found, partial int) {
	if i := strings.Index(s[from:], lit); i >= 0 {
		return from + i, -1
	}
	start := max(from, len(s)-len(lit)+1)
	for i := start; i < len(s); i++ {
		if strings.HasPrefix(lit, s[i:]) {
			return -1, i
		}
	}
	return -1, len(s)
}

// completeRunes returns the length of the longest prefix of s that does not
// end inside a multi-byte UTF-8 sequence.
func completeRunes(s string) int {
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if utf8.RuneStart(s[i]) {
			if utf8.FullRuneInString(s[i:]) {
				return len(s)
			}
			return i
		}
	}
	return len(s)
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
