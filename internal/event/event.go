// Package event produces the input stream of the interaction loop: key
// presses read from the terminal interleaved with a periodic tick.
package event

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Common errors
var (
	ErrSourceClosed = errors.New("event source closed")
	ErrNotTerminal  = errors.New("input is not a terminal")
)

// Kind distinguishes key presses from ticks.
type Kind int

const (
	KindKey Kind = iota
	KindTick
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Event is one item of the input stream. Key is only meaningful for KindKey.
type Event struct {
	Kind Kind
	Key  tea.KeyMsg
}

// KeyEvent wraps a key press.
func KeyEvent(k tea.KeyMsg) Event {
	return Event{Kind: KindKey, Key: k}
}

// TickEvent returns a tick.
func TickEvent() Event {
	return Event{Kind: KindTick}
}

// IsTick reports whether e is a tick.
func (e Event) IsTick() bool {
	return e.Kind == KindTick
}

// String returns the key name for key events and "tick" otherwise.
func (e Event) String() string {
	if e.Kind == KindKey {
		return e.Key.String()
	}
	return e.Kind.String()
}
