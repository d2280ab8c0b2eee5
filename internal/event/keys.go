package event

import (
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

const esc = 0x1b

// CSI sequences keyed by parameter bytes plus final byte.
var csiKeys = map[string]tea.KeyType{
	"A":  tea.KeyUp,
	"B":  tea.KeyDown,
	"C":  tea.KeyRight,
	"D":  tea.KeyLeft,
	"H":  tea.KeyHome,
	"F":  tea.KeyEnd,
	"Z":  tea.KeyShiftTab,
	"1~": tea.KeyHome,
	"2~": tea.KeyInsert,
	"3~": tea.KeyDelete,
	"4~": tea.KeyEnd,
	"5~": tea.KeyPgUp,
	"6~": tea.KeyPgDown,
	"7~": tea.KeyHome,
	"8~": tea.KeyEnd,
}

// SS3 sequences keyed by the byte following ESC O.
var ss3Keys = map[byte]tea.KeyType{
	'A': tea.KeyUp,
	'B': tea.KeyDown,
	'C': tea.KeyRight,
	'D': tea.KeyLeft,
	'H': tea.KeyHome,
	'F': tea.KeyEnd,
}

// Decoder turns raw terminal input into key presses, one per character.
// Input may be split anywhere: an escape sequence or UTF-8 rune cut off at
// the end of a chunk is held until the next chunk completes it or Flush
// gives up waiting. The zero value is ready to use.
type Decoder struct {
	pending []byte
}

// Decode appends b to the held input and returns every key it completes.
func (d *Decoder) Decode(b []byte) []tea.KeyMsg {
	d.pending = append(d.pending, b...)
	keys, n := decodeKeys(d.pending, false)
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
	return keys
}

// Pending reports whether input is held waiting for more bytes.
func (d *Decoder) Pending() bool {
	return len(d.pending) > 0
}

// Flush decodes the held input as it stands: a lone ESC becomes Esc and an
// unfinished sequence becomes Alt plus its second byte.
func (d *Decoder) Flush() []tea.KeyMsg {
	keys, _ := decodeKeys(d.pending, true)
	d.pending = d.pending[:0]
	return keys
}

// DecodeKeys decodes b as complete input. Unknown sequences are dropped.
func DecodeKeys(b []byte) []tea.KeyMsg {
	keys, _ := decodeKeys(b, true)
	return keys
}

// decodeKeys returns the decoded keys and the number of bytes consumed.
// Unless final is set, decoding stops in front of an incomplete trailing
// sequence or rune.
func decodeKeys(b []byte, final bool) ([]tea.KeyMsg, int) {
	var keys []tea.KeyMsg

	for i := 0; i < len(b); {
		c := b[i]

		if c == esc {
			key, n, ok := decodeEscape(b[i:], final)
			if n == 0 {
				return keys, i
			}
			if ok {
				keys = append(keys, key)
			}
			i += n
			continue
		}

		if c < 0x20 || c == 0x7f {
			keys = append(keys, tea.KeyMsg{Type: tea.KeyType(c)})
			i++
			continue
		}

		if !final && !utf8.FullRune(b[i:]) {
			return keys, i
		}
		r, size := utf8.DecodeRune(b[i:])
		i += size
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		keys = append(keys, runeKey(r, false))
	}

	return keys, len(b)
}

func runeKey(r rune, alt bool) tea.KeyMsg {
	if r == ' ' {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}, Alt: alt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: alt}
}

// decodeEscape decodes input starting with ESC. n == 0 means the input ends
// inside the sequence and more bytes are needed; ok is false for sequences
// with no key mapping.
func decodeEscape(b []byte, final bool) (key tea.KeyMsg, n int, ok bool) {
	if len(b) == 1 {
		if !final {
			return tea.KeyMsg{}, 0, false
		}
		return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
	}

	next := b[1]
	switch {
	case next == esc:
		return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
	case next < 0x20 || next == 0x7f:
		return tea.KeyMsg{Type: tea.KeyType(next), Alt: true}, 2, true
	case next >= 0x80:
		if !final && !utf8.FullRune(b[1:]) {
			return tea.KeyMsg{}, 0, false
		}
		r, size := utf8.DecodeRune(b[1:])
		if r == utf8.RuneError && size <= 1 {
			return tea.KeyMsg{Type: tea.KeyEsc}, 1, true
		}
		return runeKey(r, true), 1 + size, true
	case next == 'P' || next == ']' || next == 'X' || next == '^' || next == '_':
		// String sequence introducers; keyboards only send these as Alt keys.
		return runeKey(rune(next), true), 2, true
	}

	seq, _, n, state := ansi.DecodeSequence(b, ansi.NormalState, nil)
	if state != ansi.NormalState {
		if !final {
			return tea.KeyMsg{}, 0, false
		}
		return runeKey(rune(next), true), 2, true
	}

	switch {
	case ansi.HasCsiPrefix(seq):
		if len(seq) == 2 {
			return runeKey('[', true), 2, true
		}
		t, known := csiKeys[string(seq[2:])]
		return tea.KeyMsg{Type: t}, n, known
	case next == 'O':
		if len(b) < 3 {
			if !final {
				return tea.KeyMsg{}, 0, false
			}
			return runeKey('O', true), 2, true
		}
		if t, known := ss3Keys[b[2]]; known {
			return tea.KeyMsg{Type: t}, 3, true
		}
		return runeKey('O', true), 2, true
	}

	return runeKey(rune(next), true), 2, true
}
