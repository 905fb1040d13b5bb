package segment

// Kind identifies what a segment contains.
type Kind string

const (
	KindText      Kind = "text"
	KindToolCall  Kind = "tool_call"
	KindWriteFile Kind = "write_file"
	KindRunBash   Kind = "run_bash"
)

// IsToolCall reports whether segments of this kind resolve to a tool
// invocation on EventEnd.
func (k Kind) IsToolCall() bool {
	switch k {
	case KindToolCall, KindWriteFile, KindRunBash:
		return true
	default:
		return false
	}
}
