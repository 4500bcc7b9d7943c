// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package wallclock

import (
	"context"
	"time"
)

type (
	// WallClock is the subset of packages context and time that the station
	// reads time through: timestamps, poll and backoff waits, and bounded
	// retry contexts.
	WallClock interface {
		Now() time.Time
		After(d time.Duration) <-chan time.Time
		WithTimeoutCause(
			parent context.Context,
			timeout time.Duration,
			cause error,
		) (context.Context, context.CancelFunc)
	}

	system struct{}
)

// Instance is the clock used by every package. Tests replace it with a Fake
// through Use.
var Instance WallClock = system{}

// Use swaps the clock singleton and returns a function restoring the previous
// one, for use with defer or t.Cleanup.
func Use(c WallClock) (restore func()) {
	prev := Instance
	Instance = c
	return func() { Instance = prev }
}

// Since returns the time elapsed on the current clock.
func Since(t time.Time) time.Duration {
	return Instance.Now().Sub(t)
}

func (system) Now() time.Time {
	return time.Now()
}

func (system) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (system) WithTimeoutCause(
	parent context.Context,
	timeout time.Duration,
	cause error,
) (context.Context, context.CancelFunc) {
	return context.WithTimeoutCause(parent, timeout, cause)
}
