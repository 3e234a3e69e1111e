// Package run executes the top-level task of a program and turns termination
// signals into context cancellation.
package run

import (
	"context"
	"errors"
	"os"

	"github.com/ridge/parallel"
	"go.uber.org/zap"

	"github.com/Brownie44l1/miniserver/internal/tlog"
)

// Task is the top-level task of a program
type Task func(ctx context.Context) error

// Tool runs the task with a logger built from logConfig, watching for
// signals.
//
// If an interruption, termination or hangup signal arrives, the context passed
// to the task is closed.
//
// Tool does not return. It exits with code 0 if the task returns nil, and
// with code 1 if the task returns an error (see WithExitCode).
func Tool(logConfig tlog.Config, task Task) {
	logger := tlog.New(logConfig)
	ctx := tlog.WithLogger(context.Background(), logger)

	err := Main(ctx, task)
	if err != nil {
		logger.Error("Error", zap.Error(err))
	}
	_ = logger.Sync()
	os.Exit(ExitCode(err))
}

// Server is Tool for long-running tasks: if the task exits with (possibly
// wrapped) context.Canceled while a signal is being handled, the program
// exits with code 0.
func Server(logConfig tlog.Config, task Task) {
	Tool(logConfig, ServerTask(task))
}

// ServerTask wraps task so that returning the context's own error counts as
// success.
func ServerTask(task Task) Task {
	return func(ctx context.Context) error {
		err := task(ctx)
		if errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
}

// Main runs task next to the signal handler. Whichever finishes first stops
// the other.
func Main(ctx context.Context, task Task) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, parallel.Task(task))
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
}

// WithExitCode is an optional interface that can be implemented by an error.
//
// When a (possibly wrapped) error implementing WithExitCode reaches the top
// level, the value returned by the ExitCode method becomes the exit code of the
// process. The default exit code for other errors is 1.
type WithExitCode interface {
	ExitCode() int
}

// ExitCode maps the result of a task to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var wec WithExitCode
	if errors.As(err, &wec) {
		return wec.ExitCode()
	}
	return 1
}
