package app

import (
	"context"

	"github.com/artpar/almagro/internal/core"
	"github.com/artpar/almagro/internal/runner"
)

// Executor runs a request on behalf of a record.
type Executor interface {
	Execute(ctx context.Context, run runner.Run) (core.Result, error)
}

// RunJob is a request run started by the state machine. It holds a snapshot
// of the request, so edits made while it is in flight do not affect it.
type RunJob struct {
	record   *core.Record
	seq      uint64
	run      runner.Run
	executor Executor
}

// Request returns the request snapshot sent by the job.
func (j *RunJob) Request() runner.Run {
	return j.run
}

// Execute performs the run. It blocks and is meant to be called off the
// main loop; the result is handed back through App.Complete.
func (j *RunJob) Execute(ctx context.Context) Completion {
	res, err := j.executor.Execute(ctx, j.run)
	return Completion{job: j, Result: res, Err: err}
}

// Completion is the outcome of a RunJob.
type Completion struct {
	job    *RunJob
	Result core.Result
	Err    error
}
