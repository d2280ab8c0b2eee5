// Package views holds the top-level bubbletea model. It is the only place
// where the event source meets the state machine: it waits for the next
// event, dispatches it, runs any resulting request off the loop and renders
// the state after every message.
package views

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/artpar/almagro/internal/app"
	"github.com/artpar/almagro/internal/event"
	"github.com/artpar/almagro/internal/tui"
	"github.com/artpar/almagro/internal/tui/components"
	"github.com/artpar/almagro/internal/tui/vim"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EventSource delivers key and tick events one at a time.
type EventSource interface {
	Next(ctx context.Context) (event.Event, error)
}

// Layout bounds for the request list.
const (
	minListWidth = 24
	maxListWidth = 48
)

// eventMsg carries one event from the source into the loop.
type eventMsg struct {
	event event.Event
}

// inputDoneMsg is sent when the event source stops.
type inputDoneMsg struct {
	err error
}

// runCompleteMsg carries a finished request run back into the loop.
type runCompleteMsg struct {
	completion app.Completion
}

// MainView is the two-panel view: the request list on the left and the
// detail panel on the right, with a status bar below.
type MainView struct {
	app    *app.App
	source EventSource
	ctx    context.Context
	logger *slog.Logger
	styles tui.Styles

	list   *components.RequestList
	detail *components.DetailPanel

	width  int
	height int
	err    error
}

// Option configures the MainView.
type Option func(*MainView)

// WithContext sets the context used for reading events, persistence and
// request runs.
func WithContext(ctx context.Context) Option {
	return func(v *MainView) {
		v.ctx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *MainView) {
		v.logger = logger
	}
}

// NewMainView creates the view over a and source.
func NewMainView(a *app.App, source EventSource, opts ...Option) *MainView {
	v := &MainView{
		app:    a,
		source: source,
		ctx:    context.Background(),
		logger: slog.New(slog.DiscardHandler),
		styles: tui.DefaultStyles(),
		list:   components.NewRequestList(),
		detail: components.NewDetailPanel(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Init starts waiting for the first event.
func (v *MainView) Init() tea.Cmd {
	return v.waitForEvent()
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil

	case eventMsg:
		cmd := v.dispatch(msg.event)
		if !v.app.Running() {
			return v, tea.Quit
		}
		return v, tea.Batch(v.waitForEvent(), cmd)

	case tea.KeyMsg:
		// Only reached when the program owns stdin itself.
		cmd := v.dispatch(event.KeyEvent(msg))
		if !v.app.Running() {
			return v, tea.Quit
		}
		return v, cmd

	case runCompleteMsg:
		v.app.Complete(v.ctx, msg.completion)
		return v, nil

	case inputDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, event.ErrSourceClosed) {
			v.err = msg.err
		}
		return v, tea.Quit
	}

	return v, nil
}

// dispatch applies e to the state machine and returns the command running
// the resulting job, if any.
func (v *MainView) dispatch(e event.Event) tea.Cmd {
	job, err := v.app.Handle(v.ctx, e)
	if err != nil {
		// Already surfaced as a notice by the state machine.
		v.logger.Debug("event handling failed", "event", e.String(), "error", err)
	}
	if job == nil {
		return nil
	}
	return v.runJob(job)
}

func (v *MainView) waitForEvent() tea.Cmd {
	source, ctx := v.source, v.ctx
	return func() tea.Msg {
		e, err := source.Next(ctx)
		if err != nil {
			return inputDoneMsg{err: err}
		}
		return eventMsg{event: e}
	}
}

func (v *MainView) runJob(job *app.RunJob) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		return runCompleteMsg{completion: job.Execute(ctx)}
	}
}

// Err returns the input error that stopped the loop, if any.
func (v *MainView) Err() error {
	return v.err
}

// SetSize sets dimensions and lays out the panels.
func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updatePaneSizes()
}

// Width returns the width.
func (v *MainView) Width() int {
	return v.width
}

// Height returns the height.
func (v *MainView) Height() int {
	return v.height
}

// RequestList returns the list component.
func (v *MainView) RequestList() *components.RequestList {
	return v.list
}

// DetailPanel returns the detail component.
func (v *MainView) DetailPanel() *components.DetailPanel {
	return v.detail
}

func (v *MainView) updatePaneSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}

	listWidth := v.width * 30 / 100
	if listWidth < minListWidth {
		listWidth = minListWidth
	}
	if listWidth > maxListWidth {
		listWidth = maxListWidth
	}
	if listWidth > v.width {
		listWidth = v.width
	}

	// Reserve one line for the status bar
	paneHeight := max(v.height-1, 0)

	v.list.SetSize(listWidth, paneHeight)
	v.detail.SetSize(v.width-listWidth, paneHeight)

	v.app.Fields().SetWidth(v.detail.FieldWidth())
	v.app.Fields().SetBodyHeight(components.BodyHeight)
}

// View renders the current state.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}

	v.sync()

	panes := lipgloss.JoinHorizontal(lipgloss.Top, v.list.View(), v.detail.View())
	return lipgloss.JoinVertical(lipgloss.Left, panes, v.renderStatusBar())
}

// sync copies the state machine's state into the components.
func (v *MainView) sync() {
	a := v.app

	v.list.SetRecords(a.Records(), a.Selected())
	v.list.SetInFlight(a.InFlight)

	panelFocused := a.Focus() == vim.FocusPanel
	if panelFocused {
		v.list.Blur()
		v.detail.Focus()
	} else {
		v.list.Focus()
		v.detail.Blur()
	}

	r := a.SelectedRecord()
	v.detail.SetState(components.DetailState{
		Record:    r,
		Fields:    a.Fields(),
		Field:     a.Field(),
		Highlight: panelFocused,
		Editing:   a.Mode() == vim.ModeInsert,
		Running:   r != nil && a.InFlight(r),
		Row:       a.Offset().Row,
		Col:       a.Offset().Col,
	})
}

func (v *MainView) renderStatusBar() string {
	var mode string
	if v.app.Mode() == vim.ModeInsert {
		mode = v.styles.ModeInsert.Render(vim.ModeInsert.String())
	} else {
		mode = v.styles.ModeNormal.Render(vim.ModeNormal.String())
	}

	var hints []string
	for _, hint := range v.app.KeyMap().Hints(v.app.State()) {
		key, desc, _ := strings.Cut(hint, " ")
		hints = append(hints, v.styles.Key.Render(key)+" "+v.styles.Desc.Render(desc))
	}
	left := mode + " " + strings.Join(hints, v.styles.Muted.Render(" │ "))

	right := ""
	if notice, ok := v.app.Notice(); ok {
		style := v.styles.Success
		if notice.IsError {
			style = v.styles.Error
		}
		right = style.Render(notice.Text)
	}

	gap := v.width - lipgloss.Width(left) - lipgloss.Width(right)
	var content string
	if gap >= 1 {
		content = left + strings.Repeat(" ", gap) + right
	} else if right != "" {
		content = mode + " " + right
	} else {
		content = left
	}

	return v.styles.StatusBar.Render(tui.Truncate(content, v.width))
}
