package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/segment"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// styles holds the lipgloss styles derived from a Theme.
type styles struct {
	strong    lipgloss.Style
	emphasis  lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	link      lipgloss.Style
	errorText lipgloss.Style
	theme     segment.Theme
}

func newStyles(theme segment.Theme) styles {
	return styles{
		strong:    lipgloss.NewStyle().Bold(true),
		emphasis:  lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		link:      lipgloss.NewStyle().Underline(true),
		errorText: lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
		theme:     theme,
	}
}

// header returns the bold header style for segments of kind k.
func (s styles) header(k segment.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ansiColor(s.theme.KindColor(k))).Bold(true)
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

type mdRenderer struct {
	styles
	src []byte
	out bytes.Buffer
}

func newRenderer(theme segment.Theme) *mdRenderer {
	return &mdRenderer{styles: newStyles(theme)}
}

func (r *mdRenderer) render(src []byte, width int) string {
	r.src = src
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	r.blocks(doc, width)
	return strings.TrimRight(r.out.String(), "\n")
}

func (r *mdRenderer) blocks(parent ast.Node, width int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n, width)
		if n.NextSibling() != nil && n.Kind() != ast.KindHTMLBlock {
			r.out.WriteByte('\n')
		}
	}
}

func (r *mdRenderer) block(node ast.Node, width int) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.writeWrapped(r.inline(n), width)
	case *ast.Heading:
		r.writeWrapped(r.heading.Render(r.inline(n)), width)
	case *ast.FencedCodeBlock:
		if lang := n.Language(r.src); len(lang) > 0 {
			r.out.WriteString(r.muted.Render(string(lang)) + "\n")
		}
		r.writeCode(n.Lines())
	case *ast.CodeBlock:
		r.writeCode(n.Lines())
	case *ast.List:
		r.list(n, width, 0)
	case *ast.ThematicBreak:
		r.out.WriteString(r.muted.Render("───") + "\n")
	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.out.Write(seg.Value(r.src))
		}
	default:
		r.blocks(node, width)
	}
}

func (r *mdRenderer) writeWrapped(s string, width int) {
	r.out.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	r.out.WriteByte('\n')
}

// writeCode writes code lines verbatim behind a muted gutter.
func (r *mdRenderer) writeCode(lines *text.Segments) {
	gutter := r.muted.Render("│") + " "
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		r.out.WriteString(gutter + strings.TrimRight(string(seg.Value(r.src)), "\n") + "\n")
	}
}

func (r *mdRenderer) list(l *ast.List, width, depth int) {
	num := l.Start
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		indent := strings.Repeat("  ", depth)

		var pending strings.Builder
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			if nested, ok := ic.(*ast.List); ok {
				if pending.Len() > 0 {
					r.listItem(indent+marker, pending.String(), width)
					pending.Reset()
				}
				r.list(nested, width, depth+1)
				marker = strings.Repeat(" ", len(marker))
				continue
			}
			switch ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				pending.WriteString(r.inline(ic))
			default:
				if pending.Len() > 0 {
					pending.WriteByte('\n')
				}
				sub := &mdRenderer{styles: r.styles, src: r.src}
				sub.block(ic, width)
				pending.WriteString(sub.out.String())
			}
		}
		if pending.Len() > 0 {
			r.listItem(indent+marker, pending.String(), width)
		}
	}
}

// listItem writes content wrapped under prefix with hanging indentation.
func (r *mdRenderer) listItem(prefix, content string, width int) {
	w := max(width-len(prefix), 10)
	hang := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(lipgloss.NewStyle().Width(w).Render(content), "\n") {
		if i == 0 {
			r.out.WriteString(prefix + line + "\n")
		} else {
			r.out.WriteString(hang + line + "\n")
		}
	}
}

// inline renders the inline children of node to a styled string.
func (r *mdRenderer) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inlineNode(c, &b)
	}
	return b.String()
}

func (r *mdRenderer) inlineNode(node ast.Node, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.emphasis.Render(r.inline(n)))
		} else {
			b.WriteString(r.strong.Render(r.inline(n)))
		}
	case *ast.CodeSpan:
		b.WriteString(r.strong.Render(r.inline(n)))
	case *ast.Link:
		b.WriteString(r.link.Render(r.inline(n)) + " " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.Image:
		b.WriteString(r.link.Render(r.inline(n)) + " " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		b.WriteString(r.link.Render(string(n.URL(r.src))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.src))
		}
	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inlineNode(c, b)
		}
	}
}
