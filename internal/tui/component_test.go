package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestBaseComponent(t *testing.T) {
	t.Run("creates with title", func(t *testing.T) {
		c := NewBaseComponent("Requests")
		assert.Equal(t, "Requests", c.Title())
	})

	t.Run("starts unfocused", func(t *testing.T) {
		c := NewBaseComponent("Test")
		assert.False(t, c.Focused())
	})

	t.Run("can be focused and blurred", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.Focus()
		assert.True(t, c.Focused())
		c.Blur()
		assert.False(t, c.Focused())
	})

	t.Run("tracks dimensions", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.SetSize(80, 24)
		assert.Equal(t, 80, c.Width())
		assert.Equal(t, 24, c.Height())
		assert.Equal(t, 76, c.InnerWidth())
		assert.Equal(t, 22, c.InnerHeight())
	})

	t.Run("inner size never negative", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.SetSize(1, 1)
		assert.Equal(t, 0, c.InnerWidth())
		assert.Equal(t, 0, c.InnerHeight())
	})
}

func TestBaseComponent_Frame(t *testing.T) {
	c := NewBaseComponent("Details")
	c.SetSize(30, 6)

	view := c.Frame("hello")

	assert.Contains(t, view, "Details")
	assert.Contains(t, view, "hello")
	assert.Equal(t, 30, lipgloss.Width(view))
	assert.Equal(t, 6, lipgloss.Height(view))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello world", 4))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abc", PadRight("abcdef", 3))
	assert.Equal(t, "abc", PadRight("abc", 3))
}

func TestWindow(t *testing.T) {
	text := strings.Join([]string{"line one", "line two", "line three"}, "\n")

	t.Run("origin", func(t *testing.T) {
		assert.Equal(t, "line\nline", Window(text, 0, 0, 4, 2))
	})

	t.Run("row offset", func(t *testing.T) {
		assert.Equal(t, "line two\nline three", Window(text, 1, 0, 20, 5))
	})

	t.Run("column offset", func(t *testing.T) {
		assert.Equal(t, "one\ntwo\nthr", Window(text, 0, 5, 3, 3))
	})

	t.Run("past the end", func(t *testing.T) {
		assert.Equal(t, "", Window(text, 10, 0, 20, 5))
		assert.Equal(t, "\n\n", Window(text, 0, 50, 20, 5))
	})

	t.Run("empty viewport", func(t *testing.T) {
		assert.Equal(t, "", Window(text, 0, 0, 0, 5))
		assert.Equal(t, "", Window(text, 0, 0, 5, 0))
	})

	t.Run("strips carriage returns", func(t *testing.T) {
		assert.Equal(t, "a\nb", Window("a\r\nb", 0, 0, 5, 5))
	})
}
