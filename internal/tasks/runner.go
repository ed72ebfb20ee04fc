// Package tasks runs fire-and-forget side effects.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stove_automation/internal/logger"
)

// Runner launches detached tasks. Each task owns its error boundary: errors
// and panics are logged and never reach the caller.
type Runner struct {
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

const defaultTaskTimeout = 30 * time.Second

// NewRunner returns a Runner whose tasks get a fresh context bounded by
// timeout (0 selects the default).
func NewRunner(log *logger.Logger, timeout time.Duration) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Runner{log: log, timeout: timeout}
}

// Go starts fn in its own goroutine. The context handed to fn is detached
// from any request so the task survives the HTTP response.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.run(ctx, fn); err != nil {
			r.log.Errorw("task_failed", "task", name, "err", err)
		}
	}()
}

func (r *Runner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every task started so far has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
