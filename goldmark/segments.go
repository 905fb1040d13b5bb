package goldmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/segment"
	"github.com/mattn/go-runewidth"
)

// RenderSegments renders reassembled segments in order. Text segments are
// rendered as markdown. Tool-call segments get a header naming the kind and
// tool followed by one line per argument, truncated to width; raw-body kinds
// show their body verbatim behind a gutter. Framing delimiters recorded in
// segment metadata are not rendered.
func RenderSegments(segments []segment.Segment, width int, theme segment.Theme) string {
	if width <= 0 {
		width = defaultWidth
	}
	st := newStyles(theme)
	var parts []string
	for _, s := range segments {
		var out string
		if s.Kind.IsToolCall() {
			out = st.toolCall(s, width)
		} else {
			out = Render(s.Body(), width, theme)
		}
		if out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (st styles) toolCall(s segment.Segment, width int) string {
	var b strings.Builder

	header := "▸ " + string(s.Kind)
	call, ok := s.ToolCall()
	if ok && call.Name != string(s.Kind) {
		header += " " + ansi.Strip(call.Name)
	}
	b.WriteString(st.header(s.Kind).Render(header))
	b.WriteString(" " + st.muted.Render(s.ID))
	if incomplete, _ := s.Metadata[segment.MetaIncomplete].(bool); incomplete {
		b.WriteString(" " + st.errorText.Render("(incomplete)"))
	}

	switch {
	case !ok:
		b.WriteString("\n" + st.errorText.Render("  unresolved tool call"))
	case s.Kind == segment.KindToolCall:
		for _, line := range argumentLines(call.Arguments, width-2) {
			b.WriteString("\n  " + st.muted.Render(line))
		}
	default:
		gutter := st.muted.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(ansi.Strip(s.Body()), "\n"), "\n") {
			b.WriteString("\n" + gutter + line)
		}
	}
	return b.String()
}

// argumentLines formats arguments as sorted key: value lines, each truncated
// to width display cells.
func argumentLines(args map[string]any, width int) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(fmt.Sprint(args[k]), "\n", `\n`)
		line := ansi.Strip(k + ": " + v)
		lines = append(lines, runewidth.Truncate(line, max(width, 8), "…"))
	}
	return lines
}
