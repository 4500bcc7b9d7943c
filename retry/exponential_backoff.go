// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
)

// ExponentialBackoff doubles the wait after every failed attempt, capped at
// MaxInterval, with a small jitter. Device registration uses it at startup,
// where the uplink may take a while to come up.
type ExponentialBackoff struct {
	// MaxAttempts bounds the attempts; zero means no bound.
	MaxAttempts uint64

	// MinInterval is the first wait. Defaults to 1s.
	MinInterval time.Duration

	// MaxInterval caps the wait. Defaults to 30s.
	MaxInterval time.Duration

	// Timeout bounds the whole run, waits included. Zero means no bound.
	Timeout time.Duration

	// NoJitter disables the +/-5% jitter.
	NoJitter bool

	Logger *slog.Logger
}

// Start runs the task under the policy.
func (e *ExponentialBackoff) Start(
	ctx context.Context,
	name string,
	task Task,
) error {
	return run(ctx, name, task, e.MaxAttempts, e.Timeout, e.interval, e.Logger)
}

func (e *ExponentialBackoff) interval(attempt uint64) time.Duration {
	lo := e.MinInterval
	if lo <= 0 {
		lo = time.Second
	}
	hi := e.MaxInterval
	if hi <= 0 {
		hi = 30 * time.Second
	}

	wait := float64(lo) * math.Pow(2, float64(attempt-1))
	wait = math.Min(wait, float64(hi))
	if !e.NoJitter {
		// #nosec G404
		j := rand.New(rand.NewSource(wallclock.Instance.Now().UnixNano()))
		wait *= .95 + .1*j.Float64()
	}
	return time.Duration(wait)
}
