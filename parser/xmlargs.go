package parser

import (
	"errors"
	"fmt"
	"strings"
)

var errMalformedXML = errors.New("malformed XML arguments")

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// parseXMLArguments resolves the arguments of a generic XML tool call. An
// <arguments> block is preferred; without one the body is read as a flat
// sequence of <argName>value</argName> elements.
func parseXMLArguments(body string) (map[string]any, error) {
	elems, err := scanElements(body)
	if err != nil {
		return nil, err
	}
	for _, e := range elems {
		if e.name == "arguments" {
			return parseXMLValues(e.inner)
		}
	}
	return elementsToMap(elems), nil
}

// parseXMLValues builds a nested attribute map from balanced tag pairs.
func parseXMLValues(s string) (map[string]any, error) {
	elems, err := scanElements(s)
	if err != nil {
		return nil, err
	}
	return elementsToMap(elems), nil
}

type xmlElement struct {
	name  string
	attrs map[string]string
	inner string
}

// key is the map key of the element: the name attribute of an <arg> tag,
// otherwise the tag name.
func (e xmlElement) key() string {
	if e.name == "arg" {
		if n := e.attrs["name"]; n != "" {
			return n
		}
	}
	return e.name
}

// value decodes the element body, recursing when the body itself consists
// of elements.
func (e xmlElement) value() any {
	trimmed := strings.TrimSpace(e.inner)
	if strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, cdataOpen) {
		if nested, err := scanElements(e.inner); err == nil && len(nested) > 0 {
			return elementsToMap(nested)
		}
	}
	return decodeLeaf(e.inner)
}

func elementsToMap(elems []xmlElement) map[string]any {
	out := make(map[string]any, len(elems))
	lists := make(map[string]bool)
	for _, e := range elems {
		k, v := e.key(), e.value()
		prev, ok := out[k]
		switch {
		case !ok:
			out[k] = v
		case lists[k]:
			out[k] = append(prev.([]any), v)
		default:
			out[k] = []any{prev, v}
			lists[k] = true
		}
	}
	return out
}

func decodeLeaf(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, cdataOpen) && strings.HasSuffix(trimmed, cdataClose) {
		return trimmed[len(cdataOpen) : len(trimmed)-len(cdataClose)]
	}
	return xmlEntities.Replace(s)
}

// scanElements returns the top-level elements of s in order. Text between
// elements, comments and stray CDATA sections are skipped. An element whose
// closing tag is missing is an error.
func scanElements(s string) ([]xmlElement, error) {
	var elems []xmlElement
	i := 0
	for {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			return elems, nil
		}
		i += j
		switch {
		case strings.HasPrefix(s[i:], "<!--"):
			end := strings.Index(s[i:], "-->")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment: %w", errMalformedXML)
			}
			i += end + len("-->")
			continue
		case strings.HasPrefix(s[i:], cdataOpen):
			end := strings.Index(s[i:], cdataClose)
			if end < 0 {
				return nil, fmt.Errorf("unterminated CDATA: %w", errMalformedXML)
			}
			i += end + len(cdataClose)
			continue
		}
		name, attrs, selfClosing, tagEnd, ok := readTag(s, i)
		if !ok {
			// A bare '<' in text, such as "a < b".
			i++
			continue
		}
		if selfClosing {
			elems = append(elems, xmlElement{name: name, attrs: attrs})
			i = tagEnd
			continue
		}
		closeAt, closeEnd, found := matchClose(s, tagEnd, name)
		if !found {
			return nil, fmt.Errorf("missing </%s>: %w", name, errMalformedXML)
		}
		elems = append(elems, xmlElement{name: name, attrs: attrs, inner: s[tagEnd:closeAt]})
		i = closeEnd
	}
}

// readTag parses an opening tag at s[i] ('<'). It returns the index just
// past '>'.
func readTag(s string, i int) (name string, attrs map[string]string, selfClosing bool, end int, ok bool) {
	j := i + 1
	for j < len(s) && isNameByte(s[j]) {
		j++
	}
	if j == i+1 {
		return "", nil, false, 0, false
	}
	name = s[i+1 : j]
	var quote byte
	for k := j; k < len(s); k++ {
		ch := s[k]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '<':
			return "", nil, false, 0, false
		case '>':
			inner := s[j:k]
			if strings.HasSuffix(strings.TrimSpace(inner), "/") {
				selfClosing = true
				inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
			}
			attrs, ok = parseAttributes(inner)
			if !ok {
				return "", nil, false, 0, false
			}
			return name, attrs, selfClosing, k + 1, true
		}
	}
	return "", nil, false, 0, false
}

// matchClose finds the closing tag for name starting at from, counting
// nested elements of the same name.
func matchClose(s string, from int, name string) (at, end int, ok bool) {
	depth := 0
	i := from
	for {
		j := strings.IndexByte(s[i:], '<')
		if j < 0 {
			return 0, 0, false
		}
		i += j
		if strings.HasPrefix(s[i:], cdataOpen) {
			k := strings.Index(s[i:], cdataClose)
			if k < 0 {
				return 0, 0, false
			}
			i += k + len(cdataClose)
			continue
		}
		if strings.HasPrefix(s[i:], "</"+name) {
			k := i + 2 + len(name)
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == '>' {
				if depth == 0 {
					return i, k + 1, true
				}
				depth--
				i = k + 1
				continue
			}
		}
		if n, _, selfClosing, tagEnd, ok := readTag(s, i); ok && n == name {
			if !selfClosing {
				depth++
			}
			i = tagEnd
			continue
		}
		i++
	}
}

// parseAttributes parses key="value" pairs. Single quotes and unquoted
// values are accepted; a bare word without a value is not.
func parseAttributes(s string) (map[string]string, bool) {
	attrs := make(map[string]string)
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return attrs, true
		}
		start := i
		for i < len(s) && isNameByte(s[i]) {
			i++
		}
		if i == start {
			return nil, false
		}
		key := s[start:i]
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			return nil, false
		}
		i++
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return nil, false
		}
		var value string
		if q := s[i]; q == '"' || q == '\'' {
			end := strings.IndexByte(s[i+1:], q)
			if end < 0 {
				return nil, false
			}
			value = s[i+1 : i+1+end]
			i += end + 2
		} else {
			start := i
			for i < len(s) && !isSpace(s[i]) {
				i++
			}
			value = s[start:i]
		}
		attrs[key] = xmlEntities.Replace(value)
	}
}

func isNameByte(ch byte) bool {
	return ch == '_' || ch == '-' || ch == '.' || ch == ':' ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}
