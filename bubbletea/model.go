package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/segment"
	"github.com/fwojciec/segment/goldmark"
)

// Model is the live segment view. The stream starts on Init and its events
// are rendered into a scrolling viewport as they arrive.
type Model struct {
	Viewport viewport.Model

	theme  segment.Theme
	styles styles
	events []segment.Event

	start   tea.Cmd
	cancel  context.CancelFunc
	eventCh chan segment.Event
	doneCh  chan error
	running bool
	err     error
	ready   bool
}

type styles struct {
	muted     lipgloss.Style
	errorText lipgloss.Style
}

func newStyles(theme segment.Theme) styles {
	return styles{
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		errorText: lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// New creates a Model that renders the events of stream with theme.
func New(stream StreamFunc, theme segment.Theme) Model {
	ctx, cancel := context.WithCancel(context.Background())
	eventCh := make(chan segment.Event, 256)
	doneCh := make(chan error, 1)
	return Model{
		theme:   theme,
		styles:  newStyles(theme),
		start:   startStream(stream, ctx, eventCh, doneCh),
		cancel:  cancel,
		eventCh: eventCh,
		doneCh:  doneCh,
		running: true,
	}
}

// Running reports whether the stream is still producing events.
func (m Model) Running() bool { return m.running }

// Err returns the error the stream ended with, if any.
func (m Model) Err() error { return m.err }

// Events returns the events received so far.
func (m Model) Events() []segment.Event { return m.events }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start, listenForEvent(m.eventCh, m.doneCh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case EventMsg:
		m.events = append(m.events, msg.Event)
		m = m.refresh()
		if m.running {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil
	case DoneMsg:
		m.running = false
		m.err = msg.Err
		m.cancel()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.Viewport.View() + "\n" + m.statusLine()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	statusHeight := 1
	vpHeight := max(msg.Height-statusHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.running {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit
	case "q", "esc":
		if !m.running {
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the transcript, keeping the view pinned to the bottom
// while it was already there.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	follow := m.Viewport.AtBottom()
	segs := segment.Reassemble(m.events)
	m.Viewport.SetContent(goldmark.RenderSegments(segs, m.Viewport.Width, m.theme))
	if follow {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) statusLine() string {
	n := len(segment.Reassemble(m.events))
	switch {
	case errors.Is(m.err, context.Canceled):
		return m.styles.muted.Render(fmt.Sprintf("Cancelled after %d segments. q to quit", n))
	case m.err != nil:
		return m.styles.errorText.Render(fmt.Sprintf("Error: %v", m.err))
	case m.running:
		return m.styles.muted.Render(fmt.Sprintf("Streaming... %d segments", n))
	}
	return m.styles.muted.Render(fmt.Sprintf("Done. %d segments. q to quit", n))
}

// startStream runs stream in a command goroutine, forwarding its events to
// eventCh. eventCh is closed and the stream error sent to doneCh when it
// returns.
func startStream(stream StreamFunc, ctx context.Context, eventCh chan<- segment.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := stream(ctx, func(e segment.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent returns a command that waits for the next event on ch.
// When ch closes, it reads the error from doneCh and returns DoneMsg.
func listenForEvent(ch <-chan segment.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return DoneMsg{Err: <-doneCh}
		}
		return EventMsg{Event: evt}
	}
}
