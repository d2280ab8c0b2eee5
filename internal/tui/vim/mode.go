package vim

// Mode represents the current vim editing mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// Focus identifies the panel receiving navigation keys.
type Focus int

const (
	FocusList Focus = iota
	FocusPanel
)

// String returns the string representation of the focus.
func (f Focus) String() string {
	switch f {
	case FocusList:
		return "list"
	case FocusPanel:
		return "panel"
	default:
		return "unknown"
	}
}

// State is the combined mode and focus. Editing is only possible with the
// detail panel focused, so there are exactly three states.
type State int

const (
	StateListNormal State = iota
	StatePanelNormal
	StatePanelInsert
)

// States lists every state.
func States() []State {
	return []State{StateListNormal, StatePanelNormal, StatePanelInsert}
}

// Mode returns the editing mode of the state.
func (s State) Mode() Mode {
	if s == StatePanelInsert {
		return ModeInsert
	}
	return ModeNormal
}

// Focus returns the focused panel of the state.
func (s State) Focus() Focus {
	if s == StateListNormal {
		return FocusList
	}
	return FocusPanel
}

// IsInsert returns true if in insert mode.
func (s State) IsInsert() bool {
	return s == StatePanelInsert
}

// ToggleFocus switches between the list and the panel in normal mode.
// Insert mode is left unchanged.
func (s State) ToggleFocus() State {
	switch s {
	case StateListNormal:
		return StatePanelNormal
	case StatePanelNormal:
		return StateListNormal
	default:
		return s
	}
}

// Insert returns the insert state; the panel always gains focus.
func (s State) Insert() State {
	return StatePanelInsert
}

// Normal leaves insert mode keeping the panel focused.
func (s State) Normal() State {
	if s == StatePanelInsert {
		return StatePanelNormal
	}
	return s
}

// String returns mode and focus, e.g. "NORMAL/list".
func (s State) String() string {
	return s.Mode().String() + "/" + s.Focus().String()
}
