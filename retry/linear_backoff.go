// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// LinearBackoff implements a bounded retry policy whose wait grows linearly:
// after the n-th failed attempt it waits n*BaseDelay. With the defaults the
// waits are 2s and 4s across three attempts.
type LinearBackoff struct {
	// MaxAttempts sets the maximum number of attempts. Will be set to a
	// default of 3 if unspecified; setting this to 1 will disable retries.
	// Unlimited attempts are not supported.
	MaxAttempts uint64

	// BaseDelay is the wait after the first failed attempt. Will be set to a
	// default of 2s if unspecified.
	BaseDelay time.Duration

	// Timeout is the total timeout for all attempts.
	Timeout time.Duration

	// Logger provides a logger which will be used to log retry attempts and
	// results.
	Logger *slog.Logger
}

// DefaultMaxAttempts is the attempt bound used when none is configured.
const DefaultMaxAttempts = 3

// DefaultBaseDelay is the linear step used when none is configured.
const DefaultBaseDelay = 2 * time.Second

// Start initiates the retry executions.
func (b *LinearBackoff) Start(
	ctx context.Context,
	name string,
	task Task,
) error {
	maxAttempts := b.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return run(ctx, name, task, maxAttempts, b.Timeout, b.interval, b.Logger)
}

func (b *LinearBackoff) interval(attempt uint64) time.Duration {
	base := b.BaseDelay
	if base == 0 {
		base = DefaultBaseDelay
	}
	return time.Duration(attempt) * base
}
