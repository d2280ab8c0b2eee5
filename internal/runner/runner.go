// Package runner wraps a transport Runner with per-run timeouts, run history
// and logging.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/history"
	"github.com/artpar/almagro/internal/interfaces"
)

// Run describes one execution passed through the Runner.
type Run struct {
	Name   string
	Method string
	URL    string
	Body   string
}

// Runner executes requests through an underlying transport and records
// every completed run.
type Runner struct {
	transport interfaces.Runner
	history   history.Store
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// Option configures the Runner.
type Option func(*Runner)

// WithHistory records each completed run in the given store.
func WithHistory(store history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// NewRunner creates a Runner on top of transport.
func NewRunner(transport interfaces.Runner, opts ...Option) *Runner {
	r := &Runner{
		transport: transport,
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run satisfies interfaces.Runner for anonymous runs.
func (r *Runner) Run(ctx context.Context, method, url, body string) (core.Result, error) {
	return r.Execute(ctx, Run{Method: method, URL: url, Body: body})
}

// Execute sends the request and records the outcome. A history write failure
// is logged and does not change the result.
func (r *Runner) Execute(ctx context.Context, run Run) (core.Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := r.now()
	res, err := r.transport.Run(ctx, run.Method, run.URL, run.Body)
	elapsed := r.now().Sub(start)

	log := r.logger.With("request", run.Name, "method", run.Method, "url", run.URL)
	if err != nil {
		log.Warn("request failed", "error", err, "duration", elapsed)
	} else {
		log.Info("request completed", "status", res.Status, "duration", elapsed)
	}

	r.record(ctx, run, res, err, start, elapsed)

	return res, err
}

func (r *Runner) record(ctx context.Context, run Run, res core.Result, runErr error, start time.Time, elapsed time.Duration) {
	if r.history == nil {
		return
	}

	entry := history.Entry{
		Timestamp:      start,
		RequestName:    run.Name,
		RequestMethod:  run.Method,
		RequestURL:     run.URL,
		RequestBody:    run.Body,
		ResponseStatus: res.Status,
		ResponseBody:   res.Body,
		ResponseTime:   elapsed.Milliseconds(),
	}
	if runErr != nil {
		entry.ResponseStatus = core.StatusError
		entry.ResponseBody = runErr.Error()
		entry.Failed = true
	}

	// The run context may already be past its deadline.
	if _, err := r.history.Add(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Error("failed to record history", "request", run.Name, "error", err)
	}
}

var _ interfaces.Runner = (*Runner)(nil)
