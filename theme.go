package segment

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so rendered
// transcripts automatically match any color scheme.
type Theme struct {
	Text      int // Plain narrative text
	ToolCall  int // Tool call header
	WriteFile int // File-write header
	RunBash   int // Shell-command header
	Error     int // Incomplete or degraded segments
	Muted     int // Segment ids, argument previews
	Accent    int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Text:      -1,
		ToolCall:  3,
		WriteFile: 2,
		RunBash:   4,
		Error:     1,
		Muted:     8,
		Accent:    5,
	}
}

// KindColor returns the header color for segments of kind k.
func (t Theme) KindColor(k Kind) int {
	switch k {
	case KindToolCall:
		return t.ToolCall
	case KindWriteFile:
		return t.WriteFile
	case KindRunBash:
		return t.RunBash
	default:
		return t.Text
	}
}
