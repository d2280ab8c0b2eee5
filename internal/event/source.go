package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTickInterval is the maximum time between ticks.
const DefaultTickInterval = 250 * time.Millisecond

// DefaultBuffer is the capacity of the event channel.
const DefaultBuffer = 16

// Poller waits up to timeout for one key press. ok is false when the timeout
// elapsed without input. A non-nil error is fatal for the source.
type Poller interface {
	Poll(timeout time.Duration) (key tea.KeyMsg, ok bool, err error)
}

// Source runs a producer goroutine that polls for keys and emits a tick
// whenever the tick interval has elapsed since the previous one. Events are
// delivered in production order on a bounded channel; the producer blocks
// when the channel is full, so no key is ever dropped.
type Source struct {
	poller   Poller
	interval time.Duration
	buffer   int
	logger   *slog.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Option configures the Source.
type Option func(*Source)

// WithTickInterval sets the tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithBuffer sets the channel capacity.
func WithBuffer(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource starts producing events from poller.
func NewSource(poller Poller, opts ...Option) *Source {
	s := &Source{
		poller:   poller,
		interval: DefaultTickInterval,
		buffer:   DefaultBuffer,
		logger:   slog.New(slog.DiscardHandler),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.events = make(chan Event, s.buffer)
	go s.run()

	return s
}

// Interval returns the tick interval.
func (s *Source) Interval() time.Duration {
	return s.interval
}

func (s *Source) run() {
	defer close(s.events)

	lastTick := time.Now()
	for {
		timeout := s.interval - time.Since(lastTick)
		if timeout < 0 {
			timeout = 0
		}

		key, ok, err := s.poller.Poll(timeout)
		if err != nil {
			if s.closed() || errors.Is(err, ErrSourceClosed) {
				s.logger.Debug("event source closed")
				return
			}
			s.setErr(err)
			s.logger.Error("event source stopped", "error", err)
			return
		}

		if ok && !s.send(KeyEvent(key)) {
			return
		}

		if time.Since(lastTick) >= s.interval {
			if !s.send(TickEvent()) {
				return
			}
			lastTick = time.Now()
		}
	}
}

func (s *Source) send(e Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}

func (s *Source) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Source) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err returns the error that stopped the producer, if any.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next blocks until the next event is available. Once the producer has
// stopped and every buffered event has been delivered, Next returns the
// producer's error, or ErrSourceClosed after Close.
func (s *Source) Next(ctx context.Context) (Event, error) {
	select {
	case e, ok := <-s.events:
		if !ok {
			if err := s.Err(); err != nil {
				return Event{}, fmt.Errorf("failed to read input: %w", err)
			}
			return Event{}, ErrSourceClosed
		}
		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close stops the producer. It does not close the poller. The producer
// exits after its current poll returns.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
