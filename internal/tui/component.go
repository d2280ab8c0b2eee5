package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Component is the interface for all rendered panels. Panels never mutate
// application state; they only read it when rendering.
type Component interface {
	// View renders the component.
	View() string

	// Title returns the component title.
	Title() string

	// Focused returns true if the component is focused.
	Focused() bool

	// Focus sets the component as focused.
	Focus()

	// Blur removes focus from the component.
	Blur()

	// SetSize sets the component dimensions including borders.
	SetSize(width, height int)

	// Width returns the component width.
	Width() int

	// Height returns the component height.
	Height() int
}

// Panel padding constants
const (
	PanelPaddingH = 1 // Horizontal padding (chars)
	BorderSize    = 2 // Border takes one cell on each side
)

// BaseComponent provides common functionality for components.
type BaseComponent struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewBaseComponent creates a new base component.
func NewBaseComponent(title string) *BaseComponent {
	return &BaseComponent{
		title: title,
	}
}

// Title returns the component title.
func (c *BaseComponent) Title() string {
	return c.title
}

// Focused returns true if focused.
func (c *BaseComponent) Focused() bool {
	return c.focused
}

// Focus sets the component as focused.
func (c *BaseComponent) Focus() {
	c.focused = true
}

// Blur removes focus.
func (c *BaseComponent) Blur() {
	c.focused = false
}

// SetSize sets dimensions.
func (c *BaseComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the width.
func (c *BaseComponent) Width() int {
	return c.width
}

// Height returns the height.
func (c *BaseComponent) Height() int {
	return c.height
}

// InnerWidth returns the width available inside the border and padding.
func (c *BaseComponent) InnerWidth() int {
	return max(c.width-BorderSize-2*PanelPaddingH, 0)
}

// InnerHeight returns the height available inside the border.
func (c *BaseComponent) InnerHeight() int {
	return max(c.height-BorderSize, 0)
}

// Frame renders content inside the component border with the title on
// top.
func (c *BaseComponent) Frame(content string) string {
	title := RenderTitle(c.title, c.InnerWidth(), c.focused)
	body := lipgloss.JoinVertical(lipgloss.Left, title, content)
	return RenderBorder(body, c.width-BorderSize, c.height-BorderSize, c.focused)
}

// Styles

// Styles holds the shared component styles.
type Styles struct {
	Selected    lipgloss.Style
	Label       lipgloss.Style
	ActiveLabel lipgloss.Style
	Value       lipgloss.Style
	Muted       lipgloss.Style
	Running     lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Key         lipgloss.Style
	Desc        lipgloss.Style
	ModeNormal  lipgloss.Style
	ModeInsert  lipgloss.Style
	StatusBar   lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		ActiveLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true),
		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		Desc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		ModeNormal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1),
		ModeInsert: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Bold(true).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")),
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62"))
	} else {
		style = style.Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238"))
	}

	return style.Render(title)
}

// RenderBorder renders content with a border. width and height exclude the
// border itself.
func RenderBorder(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(max(width, 0)).
		Height(max(height, 0)).
		Padding(0, PanelPaddingH).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(lipgloss.Color("62"))
	} else {
		style = style.BorderForeground(lipgloss.Color("240"))
	}

	return style.Render(content)
}

// Truncate shortens s to at most width cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// Window returns the part of text visible through a width×height viewport
// whose top-left corner is at (row, col). Offsets past the end yield empty
// lines.
func Window(text string, row, col, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	lines := strings.Split(text, "\n")
	visible := make([]string, 0, height)
	for i := row; i < row+height && i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		visible = append(visible, ansi.Cut(line, col, col+width))
	}
	return strings.Join(visible, "\n")
}
