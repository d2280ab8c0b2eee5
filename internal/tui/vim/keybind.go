package vim

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Command is the action a key resolves to.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdNext
	CmdPrev
	CmdMoveDown
	CmdMoveUp
	CmdScrollDown
	CmdScrollUp
	CmdScrollLeft
	CmdScrollRight
	CmdToggleFocus
	CmdInsert
	CmdRun
	CmdNew
	CmdDelete
	CmdYank
	CmdCancel
	CmdCommit
)

var commandNames = map[Command]string{
	CmdNone:        "none",
	CmdQuit:        "quit",
	CmdNext:        "next",
	CmdPrev:        "prev",
	CmdMoveDown:    "move-down",
	CmdMoveUp:      "move-up",
	CmdScrollDown:  "scroll-down",
	CmdScrollUp:    "scroll-up",
	CmdScrollLeft:  "scroll-left",
	CmdScrollRight: "scroll-right",
	CmdToggleFocus: "toggle-focus",
	CmdInsert:      "insert",
	CmdRun:         "run",
	CmdNew:         "new",
	CmdDelete:      "delete",
	CmdYank:        "yank",
	CmdCancel:      "cancel",
	CmdCommit:      "commit",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// KeyBinding represents a single key binding.
type KeyBinding struct {
	key         string
	description string
	command     Command
}

// NewKeyBinding creates a new key binding.
func NewKeyBinding(key, description string, command Command) *KeyBinding {
	return &KeyBinding{
		key:         key,
		description: description,
		command:     command,
	}
}

// Key returns the key string.
func (kb *KeyBinding) Key() string {
	return kb.key
}

// Description returns the description.
func (kb *KeyBinding) Description() string {
	return kb.description
}

// Command returns the bound command.
func (kb *KeyBinding) Command() Command {
	return kb.command
}

// Matches returns true if the key message matches this binding.
func (kb *KeyBinding) Matches(msg tea.KeyMsg) bool {
	return matchKey(kb.key, msg)
}

// matchKey checks if a key string matches a tea.KeyMsg. Letters are case
// sensitive: "J" and "j" are different keys.
func matchKey(key string, msg tea.KeyMsg) bool {
	switch key {
	case "esc", "escape":
		return msg.Type == tea.KeyEsc && !msg.Alt
	case "space":
		return msg.Type == tea.KeySpace && !msg.Alt
	default:
		return msg.String() == key
	}
}

// KeyMap holds key bindings organized by state.
type KeyMap struct {
	bindings map[State][]*KeyBinding
}

// NewKeyMap creates a new empty key map.
func NewKeyMap() *KeyMap {
	return &KeyMap{
		bindings: make(map[State][]*KeyBinding),
	}
}

// Register adds a key binding for a state.
func (km *KeyMap) Register(state State, key, description string, command Command) {
	km.bindings[state] = append(km.bindings[state], NewKeyBinding(key, description, command))
}

// RegisterNormal adds a binding to both normal-mode states.
func (km *KeyMap) RegisterNormal(key, description string, command Command) {
	km.Register(StateListNormal, key, description, command)
	km.Register(StatePanelNormal, key, description, command)
}

// GetBindings returns all bindings for a state.
func (km *KeyMap) GetBindings(state State) []*KeyBinding {
	return km.bindings[state]
}

// FindBinding finds a matching binding for the given state and key message.
func (km *KeyMap) FindBinding(state State, msg tea.KeyMsg) (*KeyBinding, bool) {
	for _, kb := range km.bindings[state] {
		if kb.Matches(msg) {
			return kb, true
		}
	}
	return nil, false
}

// Lookup resolves a key to a command, CmdNone when unbound.
func (km *KeyMap) Lookup(state State, msg tea.KeyMsg) Command {
	if kb, ok := km.FindBinding(state, msg); ok {
		return kb.command
	}
	return CmdNone
}

// Hints returns "keys description" pairs for the state in registration
// order. Keys sharing a description are joined with "/". Bindings without a
// description are left out.
func (km *KeyMap) Hints(state State) []string {
	var order []string
	keys := make(map[string][]string)

	for _, kb := range km.bindings[state] {
		if kb.description == "" {
			continue
		}
		if _, seen := keys[kb.description]; !seen {
			order = append(order, kb.description)
		}
		keys[kb.description] = append(keys[kb.description], kb.key)
	}

	hints := make([]string, 0, len(order))
	for _, desc := range order {
		hints = append(hints, strings.Join(keys[desc], "/")+" "+desc)
	}
	return hints
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() *KeyMap {
	km := NewKeyMap()

	// Quitting
	km.RegisterNormal("q", "quit", CmdQuit)
	km.RegisterNormal("esc", "quit", CmdQuit)
	km.RegisterNormal("ctrl+c", "", CmdQuit)

	// List navigation
	km.Register(StateListNormal, "j", "next", CmdNext)
	km.Register(StateListNormal, "k", "prev", CmdPrev)
	km.Register(StateListNormal, "J", "move", CmdMoveDown)
	km.Register(StateListNormal, "K", "move", CmdMoveUp)

	// Field navigation and response scrolling
	km.Register(StatePanelNormal, "j", "field", CmdNext)
	km.Register(StatePanelNormal, "k", "field", CmdPrev)
	km.Register(StatePanelNormal, "down", "scroll", CmdScrollDown)
	km.Register(StatePanelNormal, "up", "scroll", CmdScrollUp)
	km.RegisterNormal("left", "", CmdScrollLeft)
	km.RegisterNormal("right", "", CmdScrollRight)

	// Mode and focus switching
	km.RegisterNormal("h", "focus", CmdToggleFocus)
	km.RegisterNormal("l", "focus", CmdToggleFocus)
	km.RegisterNormal("i", "edit", CmdInsert)

	// Record actions
	km.RegisterNormal("enter", "run", CmdRun)
	km.RegisterNormal("n", "new", CmdNew)
	km.RegisterNormal("x", "delete", CmdDelete)
	km.RegisterNormal("y", "copy", CmdYank)

	// Insert mode
	km.Register(StatePanelInsert, "esc", "cancel", CmdCancel)
	km.Register(StatePanelInsert, "enter", "save", CmdCommit)
	km.Register(StatePanelInsert, "ctrl+c", "", CmdQuit)

	return km
}
