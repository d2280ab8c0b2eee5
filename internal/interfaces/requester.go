// Package interfaces defines the capabilities the interaction loop depends on.
package interfaces

import (
	"context"

	"github.com/artpar/almagro/internal/core"
)

// Runner executes one HTTP request.
// Implemented by: protocol/http.Client, runner.Runner.
type Runner interface {
	// Run sends the request and returns the numeric status text and the
	// response body. Transport failures, malformed URLs and unknown methods
	// are reported as errors.
	Run(ctx context.Context, method, url, body string) (core.Result, error)
}

// RunnerFunc adapts an ordinary function to the Runner interface.
type RunnerFunc func(ctx context.Context, method, url, body string) (core.Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, method, url, body string) (core.Result, error) {
	return f(ctx, method, url, body)
}
