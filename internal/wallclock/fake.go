// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package wallclock

import (
	"context"
	"sync"
	"time"
)

// Fake is a simulated clock. Time only moves when Advance is called or when
// something waits on it: After jumps the clock forward by the requested
// duration and fires immediately, so code that sleeps through the clock runs
// instantly while still observing elapsed time.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewFake creates a simulated clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the simulated time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the simulated time forward.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Waits returns every duration waited on through After, in order.
func (f *Fake) Waits() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.waits...)
}

// After advances the clock by d and returns an already-fired channel.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	c := make(chan time.Time, 1)
	c <- f.wait(d)
	return c
}

// WithTimeoutCause does not arm a deadline; simulated time never expires a
// context on its own.
func (*Fake) WithTimeoutCause(
	parent context.Context,
	_ time.Duration,
	_ error,
) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}

func (f *Fake) wait(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, d)
	if d > 0 {
		f.now = f.now.Add(d)
	}
	return f.now
}
