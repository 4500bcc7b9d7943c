// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
)

type (
	// Task is one attempt at an operation. On failure it reports whether the
	// error is worth another attempt; returning false ends the loop early.
	Task = func(context.Context) (shouldRetry bool, err error)

	// Policy runs a task until it succeeds, gives up or the context ends.
	// The name identifies the task in logs.
	Policy interface {
		Start(ctx context.Context, name string, task Task) error
	}
)

// run is the attempt loop shared by the policies. The interval function maps
// the number of the attempt that just failed to the wait before the next one.
func run(
	ctx context.Context,
	name string,
	task Task,
	maxAttempts uint64,
	timeout time.Duration,
	interval func(attempt uint64) time.Duration,
	lg *slog.Logger,
) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = wallclock.Instance.WithTimeoutCause(
			ctx,
			timeout,
			context.DeadlineExceeded,
		)
		defer cancel()
	}

	l := logger{log.Wrap(lg)}

	for attempt := uint64(1); ; attempt++ {
		l.attempt(ctx, name, attempt)
		retry, err := task(ctx)
		if err == nil {
			l.complete(ctx, name, attempt, nil)
			return nil
		}

		if !retry || attempt == maxAttempts || ctx.Err() != nil {
			l.complete(ctx, name, attempt, err)
			return err
		}

		wait := interval(attempt)
		l.backoff(ctx, name, attempt, wait, err)

		select {
		case <-wallclock.Instance.After(wait):
		case <-ctx.Done():
			l.complete(ctx, name, attempt, ctx.Err())
			return ctx.Err()
		}
	}
}
