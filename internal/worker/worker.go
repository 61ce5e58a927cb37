// Package worker runs offloaded computations outside the request path.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shop-service/internal/util"
)

// Task is a unit of work executed off the request path.
type Task func(ctx context.Context) (string, error)

// Result is the single message a task reports back with.
type Result struct {
	Value string
	Err   error
}

// Runner executes tasks on their own goroutine, delivering the outcome over
// a single-message channel. Every run is bounded by a timeout so an
// unbounded task cannot leak, and a task failure propagates to the awaiter
// as an error rather than being swallowed.
type Runner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner creates a runner with the given per-task timeout.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// Run executes the task and waits for its result, the timeout, or caller
// cancellation, whichever comes first.
func (r *Runner) Run(ctx context.Context, name string, task Task) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(chan Result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				results <- Result{Err: fmt.Errorf("task panicked: %v", p)}
			}
		}()
		value, err := task(ctx)
		results <- Result{Value: value, Err: err}
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("Worker task abandoned",
			zap.String("task", name),
			zap.Error(ctx.Err()))
		return "", fmt.Errorf("task %s: %w", name, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			r.logger.Error("Worker task failed",
				zap.String("task", name),
				zap.Error(result.Err))
			return "", fmt.Errorf("task %s: %w", name, result.Err)
		}
		r.logger.Info("Worker task finished",
			zap.String("task", name),
			zap.String("result", result.Value))
		return result.Value, nil
	}
}
