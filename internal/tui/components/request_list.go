package components

import (
	"fmt"
	"strings"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/tui"
)

// methodWidth fits the longest verb in core.Methods.
const methodWidth = 7

// RequestList renders the stored records with the selection highlighted.
type RequestList struct {
	*tui.BaseComponent
	styles   tui.Styles
	records  []*core.Record
	selected int
	inFlight func(*core.Record) bool
}

// NewRequestList creates an empty request list.
func NewRequestList() *RequestList {
	return &RequestList{
		BaseComponent: tui.NewBaseComponent("Requests"),
		styles:        tui.DefaultStyles(),
		inFlight:      func(*core.Record) bool { return false },
	}
}

// SetRecords sets the records to render and the selected index.
func (l *RequestList) SetRecords(records []*core.Record, selected int) {
	l.records = records
	l.selected = selected
}

// SetInFlight sets the predicate marking records with a run in progress.
func (l *RequestList) SetInFlight(fn func(*core.Record) bool) {
	if fn == nil {
		fn = func(*core.Record) bool { return false }
	}
	l.inFlight = fn
}

// Selected returns the highlighted index.
func (l *RequestList) Selected() int {
	return l.selected
}

// View renders the list.
func (l *RequestList) View() string {
	width := l.InnerWidth()
	rows := l.InnerHeight() - 1 // title
	if rows < 0 {
		rows = 0
	}

	if len(l.records) == 0 {
		hint := l.styles.Muted.Render(tui.Truncate("No requests. Press n to create one.", width))
		return l.Frame(hint)
	}

	start := visibleStart(l.selected, len(l.records), rows)
	end := min(start+rows, len(l.records))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, width))
	}
	return l.Frame(strings.Join(lines, "\n"))
}

func (l *RequestList) renderItem(i, width int) string {
	r := l.records[i]

	marker := " "
	if l.inFlight(r) {
		marker = "…"
	}
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	line := tui.PadRight(fmt.Sprintf("%s%-*s %s", marker, methodWidth, r.Method, name), width)

	if i == l.selected {
		return l.styles.Selected.Render(line)
	}
	return l.styles.Value.Render(line)
}

// visibleStart returns the first row to show so the selection stays in
// view.
func visibleStart(selected, total, rows int) int {
	if rows <= 0 || total <= rows {
		return 0
	}
	start := selected - rows + 1
	if start < 0 {
		start = 0
	}
	if start > total-rows {
		start = total - rows
	}
	return start
}

var _ tui.Component = (*RequestList)(nil)
