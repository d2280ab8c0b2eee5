package app

import (
	"github.com/artpar/almagro/internal/core"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FieldSet holds one edit buffer per editable field. Name, method and URL
// are single-line inputs; the body is a multi-line area where ctrl+j starts
// a new line, since enter commits the edit.
type FieldSet struct {
	inputs [core.FieldBody]textinput.Model
	body   textarea.Model
}

// NewFieldSet creates empty, unfocused buffers.
func NewFieldSet() *FieldSet {
	fs := &FieldSet{}

	for i := range fs.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Cursor.SetMode(cursor.CursorStatic)
		fs.inputs[i] = ti
	}

	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"))
	ta.Cursor.SetMode(cursor.CursorStatic)
	fs.body = ta

	return fs
}

// Load copies the record's values into every buffer, discarding pending
// edits. A nil record empties the buffers.
func (fs *FieldSet) Load(r *core.Record) {
	for _, f := range core.Fields() {
		text := ""
		if r != nil {
			text = r.Value(f)
		}
		fs.set(f, text)
	}
}

// Reset reloads a single buffer from the record.
func (fs *FieldSet) Reset(f core.Field, r *core.Record) {
	text := ""
	if r != nil {
		text = r.Value(f)
	}
	fs.set(f, text)
}

func (fs *FieldSet) set(f core.Field, text string) {
	if f == core.FieldBody {
		fs.body.SetValue(text)
		return
	}
	fs.inputs[f].SetValue(text)
	fs.inputs[f].CursorEnd()
}

// Value returns the current buffer text for f.
func (fs *FieldSet) Value(f core.Field) string {
	if f == core.FieldBody {
		return fs.body.Value()
	}
	return fs.inputs[f].Value()
}

// Focus gives f keyboard focus and blurs the others. Unfocused buffers ignore
// key messages.
func (fs *FieldSet) Focus(f core.Field) {
	fs.Blur()
	if f == core.FieldBody {
		fs.body.Focus()
		return
	}
	fs.inputs[f].Focus()
}

// Blur removes focus from every buffer.
func (fs *FieldSet) Blur() {
	for i := range fs.inputs {
		fs.inputs[i].Blur()
	}
	fs.body.Blur()
}

// Focused reports whether f has keyboard focus.
func (fs *FieldSet) Focused(f core.Field) bool {
	if f == core.FieldBody {
		return fs.body.Focused()
	}
	return fs.inputs[f].Focused()
}

// Update forwards a key to the buffer for f.
func (fs *FieldSet) Update(f core.Field, msg tea.KeyMsg) {
	if f == core.FieldBody {
		fs.body, _ = fs.body.Update(msg)
		return
	}
	fs.inputs[f], _ = fs.inputs[f].Update(msg)
}

// SetWidth sets the visible width of every buffer.
func (fs *FieldSet) SetWidth(w int) {
	if w < 1 {
		w = 1
	}
	for i := range fs.inputs {
		fs.inputs[i].Width = w
	}
	fs.body.SetWidth(w)
}

// SetBodyHeight sets the number of visible body lines.
func (fs *FieldSet) SetBodyHeight(h int) {
	if h < 1 {
		h = 1
	}
	fs.body.SetHeight(h)
}

// View renders the buffer for f.
func (fs *FieldSet) View(f core.Field) string {
	if f == core.FieldBody {
		return fs.body.View()
	}
	return fs.inputs[f].View()
}
