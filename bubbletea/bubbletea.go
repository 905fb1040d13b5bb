// Package bubbletea provides a Bubble Tea view that renders segments live as
// the parser produces them.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/segment"
)

// StreamFunc produces parser events. The onEvent callback is called for each
// event in order. The function blocks until the stream ends or the context is
// cancelled.
type StreamFunc func(ctx context.Context, onEvent func(segment.Event)) error

// Run creates and runs the Bubble Tea program and returns the final model.
// It blocks until the program exits. When ctx is cancelled, the program quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (Model, error) {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// EventMsg wraps a parser event for delivery to the model.
type EventMsg struct {
	Event segment.Event
}

// DoneMsg signals that the stream has ended.
type DoneMsg struct {
	Err error
}
