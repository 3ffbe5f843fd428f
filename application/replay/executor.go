package replay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrExecutorClosed is returned by Dispatch after Shutdown was called
var ErrExecutorClosed = errors.New("executor is shut down")

// Runner performs one trim job
type Runner interface {
	Run(ctx context.Context, path string, seconds int)
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, path string, seconds int)

// Run calls f(ctx, path, seconds)
func (f RunnerFunc) Run(ctx context.Context, path string, seconds int) {
	f(ctx, path, seconds)
}

// Executor runs every job on its own goroutine. Jobs share nothing but the
// executor's context, which is cancelled only when Shutdown gives up waiting.
type Executor struct {
	runner Runner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	running atomic.Int64
}

// NewExecutor creates an Executor whose jobs run under a context derived from ctx
func NewExecutor(ctx context.Context, runner Runner, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		runner: runner,
		logger: logger,
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	return e
}

// Dispatch implements Dispatcher. It never blocks on the job.
func (e *Executor) Dispatch(path string, seconds int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrExecutorClosed
	}

	e.wg.Add(1)
	e.running.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.running.Add(-1)

		e.logger.Debug("trim job started", "path", path, "seconds", seconds)
		e.runner.Run(e.ctx, path, seconds)
	}()
	return nil
}

// Running returns the number of jobs in flight
func (e *Executor) Running() int {
	return int(e.running.Load())
}

// Shutdown stops accepting jobs and waits for running ones. If ctx expires
// first, running jobs are cancelled and Shutdown returns ctx.Err() once they
// have returned.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-ctx.Done():
		e.logger.Warn("cancelling unfinished trim jobs", "running", e.Running())
		e.cancel()
		<-done
		return ctx.Err()
	}
}

// Ensure Executor implements Dispatcher
var _ Dispatcher = (*Executor)(nil)
