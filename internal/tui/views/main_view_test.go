package views

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/almagro/internal/app"
	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/event"
	"github.com/artpar/almagro/internal/interfaces"
	"github.com/artpar/almagro/internal/tui/vim"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueSource replays queued events and then reports err.
type queueSource struct {
	events []event.Event
	err    error
}

func (s *queueSource) Next(ctx context.Context) (event.Event, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			return event.Event{}, s.err
		}
		return event.Event{}, event.ErrSourceClosed
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, nil
}

func runeKey(r rune) event.Event {
	return event.KeyEvent(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func newView(t *testing.T, opts ...app.Option) (*MainView, *app.App, *queueSource) {
	t.Helper()
	a := app.New(append([]app.Option{app.WithClipboard(func(string) error { return nil })}, opts...)...)
	source := &queueSource{}
	v := NewMainView(a, source)
	v.SetSize(100, 30)
	return v, a, source
}

// send delivers e and returns the resulting command.
func send(t *testing.T, v *MainView, e event.Event) tea.Cmd {
	t.Helper()
	model, cmd := v.Update(eventMsg{event: e})
	require.Same(t, v, model)
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewMainView(t *testing.T) {
	v, _, _ := newView(t)

	assert.NotNil(t, v.RequestList())
	assert.NotNil(t, v.DetailPanel())
	assert.NoError(t, v.Err())
}

func TestMainView_Init(t *testing.T) {
	v, _, source := newView(t)
	source.events = []event.Event{runeKey('n')}

	msg := v.Init()()

	assert.Equal(t, eventMsg{event: runeKey('n')}, msg)
}

func TestMainView_Layout(t *testing.T) {
	t.Run("sets size on window resize", func(t *testing.T) {
		v, _, _ := newView(t)

		_, cmd := v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

		assert.Nil(t, cmd)
		assert.Equal(t, 120, v.Width())
		assert.Equal(t, 40, v.Height())
		assert.Equal(t, 120, v.RequestList().Width()+v.DetailPanel().Width())
		assert.Equal(t, 39, v.RequestList().Height())
	})

	t.Run("clamps the list width", func(t *testing.T) {
		v, _, _ := newView(t)

		v.SetSize(60, 20)
		assert.Equal(t, minListWidth, v.RequestList().Width())

		v.SetSize(400, 20)
		assert.Equal(t, maxListWidth, v.RequestList().Width())
	})

	t.Run("renders to the window size", func(t *testing.T) {
		v, _, _ := newView(t)
		send(t, v, runeKey('n'))

		view := v.View()

		assert.Equal(t, 100, lipgloss.Width(view))
		assert.Equal(t, 30, lipgloss.Height(view))
	})

	t.Run("renders nothing before the first size", func(t *testing.T) {
		a := app.New()
		v := NewMainView(a, &queueSource{})
		assert.Equal(t, "", v.View())
	})
}

func TestMainView_Events(t *testing.T) {
	t.Run("dispatches keys and keeps waiting", func(t *testing.T) {
		v, a, source := newView(t)
		source.events = []event.Event{event.TickEvent()}

		cmd := send(t, v, runeKey('n'))

		require.Len(t, a.Records(), 1)
		require.NotNil(t, cmd)
		assert.Equal(t, eventMsg{event: event.TickEvent()}, cmd())
	})

	t.Run("quit key stops the program", func(t *testing.T) {
		v, a, _ := newView(t)

		cmd := send(t, v, runeKey('q'))

		assert.False(t, a.Running())
		assert.True(t, isQuit(cmd))
	})

	t.Run("direct key messages are dispatched", func(t *testing.T) {
		v, a, _ := newView(t)

		_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

		assert.Nil(t, cmd)
		assert.Len(t, a.Records(), 1)
	})

	t.Run("closed source quits cleanly", func(t *testing.T) {
		v, _, _ := newView(t)

		msg := v.Init()()
		_, cmd := v.Update(msg)

		assert.True(t, isQuit(cmd))
		assert.NoError(t, v.Err())
	})

	t.Run("input failure is reported", func(t *testing.T) {
		v, _, source := newView(t)
		source.err = errors.New("read /dev/tty: input/output error")

		msg := v.Init()()
		_, cmd := v.Update(msg)

		assert.True(t, isQuit(cmd))
		assert.EqualError(t, v.Err(), "read /dev/tty: input/output error")
	})
}

func TestMainView_Run(t *testing.T) {
	runner := interfaces.RunnerFunc(func(ctx context.Context, method, url, body string) (core.Result, error) {
		return core.Result{Status: "200", Body: "pong"}, nil
	})
	v, a, _ := newView(t, app.WithRunner(runner))
	send(t, v, runeKey('n'))

	cmd := send(t, v, event.KeyEvent(tea.KeyMsg{Type: tea.KeyEnter}))
	require.NotNil(t, cmd)
	assert.True(t, a.InFlight(a.SelectedRecord()))
	assert.Contains(t, v.View(), "running…")

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	var completed bool
	for _, c := range batch {
		msg := c()
		if done, ok := msg.(runCompleteMsg); ok {
			v.Update(done)
			completed = true
		}
	}

	require.True(t, completed)
	assert.False(t, a.InFlight(a.SelectedRecord()))
	assert.Equal(t, "200", a.SelectedRecord().LastStatus)
	assert.Contains(t, v.View(), "pong")
}

func TestMainView_StatusBar(t *testing.T) {
	t.Run("shows normal mode and hints", func(t *testing.T) {
		v, _, _ := newView(t)

		bar := v.renderStatusBar()

		assert.Contains(t, bar, "NORMAL")
		assert.Contains(t, bar, "quit")
	})

	t.Run("shows insert mode", func(t *testing.T) {
		v, a, _ := newView(t)
		send(t, v, runeKey('n'))
		send(t, v, runeKey('i'))
		require.Equal(t, vim.ModeInsert, a.Mode())

		bar := v.renderStatusBar()

		assert.Contains(t, bar, "INSERT")
		assert.Contains(t, bar, "save")
	})

	t.Run("shows notices", func(t *testing.T) {
		v, _, _ := newView(t)
		send(t, v, runeKey('n'))
		send(t, v, runeKey('y'))

		assert.Contains(t, v.renderStatusBar(), "response copied")
	})

	t.Run("fits the width", func(t *testing.T) {
		v, _, _ := newView(t)
		v.SetSize(30, 10)

		assert.LessOrEqual(t, lipgloss.Width(v.renderStatusBar()), 30)
	})
}

func TestMainView_Focus(t *testing.T) {
	v, _, _ := newView(t)
	send(t, v, runeKey('n'))

	v.View()
	assert.True(t, v.RequestList().Focused())
	assert.False(t, v.DetailPanel().Focused())

	send(t, v, runeKey('l'))
	send(t, v, runeKey('j'))
	v.View()
	assert.False(t, v.RequestList().Focused())
	assert.True(t, v.DetailPanel().Focused())
	assert.Equal(t, core.FieldMethod, v.DetailPanel().State().Field)
	assert.True(t, v.DetailPanel().State().Highlight)
}
