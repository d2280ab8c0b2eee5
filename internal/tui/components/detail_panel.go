package components

import (
	"strings"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/tui"
)

// BodyHeight is the number of lines reserved for the body buffer.
const BodyHeight = 3

// FieldViewer renders the edit buffer of a field.
type FieldViewer interface {
	View(f core.Field) string
}

// DetailState is everything the detail panel reads when rendering.
type DetailState struct {
	Record    *core.Record
	Fields    FieldViewer
	Field     core.Field
	Highlight bool
	Editing   bool
	Running   bool
	Row       int
	Col       int
}

// DetailPanel renders the four editable fields of the selected record,
// its last status and a scrollable window onto its last response.
type DetailPanel struct {
	*tui.BaseComponent
	styles tui.Styles
	state  DetailState
}

// NewDetailPanel creates an empty detail panel.
func NewDetailPanel() *DetailPanel {
	return &DetailPanel{
		BaseComponent: tui.NewBaseComponent("Details"),
		styles:        tui.DefaultStyles(),
	}
}

// SetState replaces the rendered state.
func (p *DetailPanel) SetState(s DetailState) {
	p.state = s
}

// State returns the rendered state.
func (p *DetailPanel) State() DetailState {
	return p.state
}

// FieldWidth returns the width available to a field buffer.
func (p *DetailPanel) FieldWidth() int {
	return max(p.InnerWidth()-3, 1)
}

// View renders the panel.
func (p *DetailPanel) View() string {
	s := p.state
	width := p.InnerWidth()

	if s.Record == nil || s.Fields == nil {
		hint := p.styles.Muted.Render(tui.Truncate("Nothing selected.", width))
		return p.Frame(hint)
	}

	var lines []string
	for _, f := range core.Fields() {
		lines = append(lines, p.label(f.Title(), s.Highlight && f == s.Field, s.Editing && f == s.Field))
		for _, line := range strings.Split(s.Fields.View(f), "\n") {
			lines = append(lines, "  "+tui.Truncate(line, max(width-2, 0)))
		}
	}

	lines = append(lines, p.label("Status Code", false, false))
	lines = append(lines, "  "+p.status())

	lines = append(lines, p.label("Response", false, false))
	used := len(lines) + 1 // title
	rows := max(p.InnerHeight()-used, 0)
	window := tui.Window(s.Record.LastResponse, s.Row, s.Col, max(width-2, 0), rows)
	if window != "" {
		for _, line := range strings.Split(window, "\n") {
			lines = append(lines, "  "+p.styles.Value.Render(line))
		}
	}

	if limit := max(p.InnerHeight()-1, 0); len(lines) > limit {
		lines = lines[:limit]
	}
	return p.Frame(strings.Join(lines, "\n"))
}

func (p *DetailPanel) label(title string, active, editing bool) string {
	if editing {
		title += " [editing]"
	}
	if active {
		return p.styles.ActiveLabel.Render("▸ " + title)
	}
	return p.styles.Label.Render("  " + title)
}

func (p *DetailPanel) status() string {
	r := p.state.Record
	switch {
	case p.state.Running:
		return p.styles.Running.Render("running…")
	case r.LastStatus == "":
		return p.styles.Muted.Render("-")
	case r.LastStatus == core.StatusError:
		return p.styles.Error.Render(r.LastStatus)
	default:
		return p.styles.Success.Render(r.LastStatus)
	}
}

var _ tui.Component = (*DetailPanel)(nil)
