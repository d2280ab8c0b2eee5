package event

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/muesli/cancelreader"
)

// EscapeDelay is how long input cut off inside an escape sequence or rune
// is held for the rest of its bytes before it is decoded as it stands.
const EscapeDelay = 50 * time.Millisecond

// TerminalPoller reads key presses from a terminal switched to raw mode.
// The previous terminal state is restored by Close, which must run on every
// exit path once OpenTerminal has succeeded.
type TerminalPoller struct {
	in     *os.File
	state  *term.State
	reader cancelreader.CancelReader

	chunks chan []byte
	errs   chan error
	done   chan struct{}

	// Owned by the polling goroutine.
	decoder   Decoder
	queue     []tea.KeyMsg
	heldSince time.Time

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// OpenTerminal switches in to raw mode and starts reading from it.
func OpenTerminal(in *os.File) (*TerminalPoller, error) {
	fd := in.Fd()
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	reader, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(fd, state)
		return nil, err
	}

	p := newTerminalPoller()
	p.in = in
	p.state = state
	p.reader = reader

	p.wg.Add(1)
	go p.readLoop(reader)

	return p, nil
}

func newTerminalPoller() *TerminalPoller {
	return &TerminalPoller{
		chunks: make(chan []byte, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// readLoop forwards raw chunks; decoding happens in Poll so that held
// input can be flushed when no more bytes arrive.
func (p *TerminalPoller) readLoop(r io.Reader) {
	defer p.wg.Done()

	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.chunks <- chunk:
			case <-p.done:
				return
			}
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return
			}
			select {
			case p.errs <- err:
			case <-p.done:
			}
			return
		}
	}
}

// Poll waits up to timeout for the next key press. Input held by the
// decoder is flushed once it has waited EscapeDelay, even if that cuts the
// wait short.
func (p *TerminalPoller) Poll(timeout time.Duration) (tea.KeyMsg, bool, error) {
	deadline := time.Now().Add(timeout)

	for {
		if key, ok := p.pop(); ok {
			return key, true, nil
		}

		select {
		case chunk := <-p.chunks:
			p.decode(chunk)
			continue
		case err := <-p.errs:
			return tea.KeyMsg{}, false, err
		case <-p.done:
			return tea.KeyMsg{}, false, ErrSourceClosed
		default:
		}

		wait := time.Until(deadline)
		flushAt := p.heldSince.Add(EscapeDelay)
		flush := p.decoder.Pending() && !flushAt.After(deadline)
		if flush {
			wait = time.Until(flushAt)
		}
		if wait <= 0 {
			if flush {
				p.queue = append(p.queue, p.decoder.Flush()...)
				continue
			}
			return tea.KeyMsg{}, false, nil
		}

		timer := time.NewTimer(wait)
		select {
		case chunk := <-p.chunks:
			timer.Stop()
			p.decode(chunk)
		case err := <-p.errs:
			timer.Stop()
			return tea.KeyMsg{}, false, err
		case <-p.done:
			timer.Stop()
			return tea.KeyMsg{}, false, ErrSourceClosed
		case <-timer.C:
			if !flush {
				return tea.KeyMsg{}, false, nil
			}
			p.queue = append(p.queue, p.decoder.Flush()...)
		}
	}
}

func (p *TerminalPoller) decode(chunk []byte) {
	p.queue = append(p.queue, p.decoder.Decode(chunk)...)
	if p.decoder.Pending() {
		p.heldSince = time.Now()
	}
}

func (p *TerminalPoller) pop() (tea.KeyMsg, bool) {
	if len(p.queue) == 0 {
		return tea.KeyMsg{}, false
	}
	key := p.queue[0]
	p.queue = p.queue[1:]
	return key, true
}

// Close stops reading and restores the terminal. It is safe to call more
// than once.
func (p *TerminalPoller) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.reader.Cancel()
		p.wg.Wait()
		_ = p.reader.Close()
		p.closeErr = term.Restore(p.in.Fd(), p.state)
	})
	return p.closeErr
}
