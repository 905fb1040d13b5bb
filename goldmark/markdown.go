// Package goldmark renders parsed model output to ANSI-styled terminal text.
// Narrative segments are parsed as markdown with goldmark and styled with
// lipgloss; tool-call segments render as headers with argument previews.
package goldmark

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/segment"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Escape sequences already present in source are stripped first so model
// output cannot drive the terminal. Paragraphs and list items are
// word-wrapped to width; code blocks keep their lines.
func Render(source string, width int, theme segment.Theme) string {
	source = ansi.Strip(source)
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}
