// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"context"
	"errors"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/retry"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
)

// Uploader gives a Sink the best-effort delivery contract: connectivity
// preflight, bounded retries with linear backoff, an optional circuit breaker
// and upload accounting. Failures never escape as errors; callers get a
// boolean and LastError describes the most recent failure. Delivery is
// at-most-once: a reading that exhausts its attempts is dropped.
//
// An Uploader is driven from a single control loop and is not safe for
// concurrent use.
type Uploader struct {
	sink     Sink
	name     string
	policy   retry.Policy
	attempts int
	recorder Recorder
	log      logger

	threshold int
	failures  int
	lastErr   string
}

// NewUploader wraps a sink.
func NewUploader(s Sink, opt ...UploaderOption) *Uploader {
	var opts UploaderOptions
	opts.Apply(opt)

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = retry.DefaultMaxAttempts
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}

	return &Uploader{
		sink: s,
		name: s.Name(),
		policy: &retry.LinearBackoff{
			MaxAttempts: uint64(opts.MaxAttempts),
			BaseDelay:   opts.BaseDelay,
			Logger:      opts.Logger,
		},
		attempts:  opts.MaxAttempts,
		recorder:  opts.Recorder,
		log:       logger{log.Wrap(opts.Logger)},
		threshold: max(opts.FailureThreshold, 0),
	}
}

// Name returns the name of the wrapped sink.
func (u *Uploader) Name() string {
	return u.name
}

// Preflight reports whether the backend looks reachable.
func (u *Uploader) Preflight(ctx context.Context) bool {
	return u.probe(ctx) == nil
}

// Upload performs a single write.
func (u *Uploader) Upload(ctx context.Context, r *Reading) bool {
	return u.upload(ctx, r, 1) == nil
}

// UploadWithRetry checks connectivity and then writes the reading, retrying
// failed writes up to the configured number of attempts. It reports whether
// the reading was delivered.
func (u *Uploader) UploadWithRetry(ctx context.Context, r *Reading) bool {
	if u.Disabled() {
		u.lastErr = ErrCircuitOpen.Error()
		u.recorder.RecordUpload(u.name, telemetry.Skipped)
		u.log.skipped(ctx, u.name, ErrCircuitOpen)
		return false
	}

	if err := u.probe(ctx); err != nil {
		u.recorder.RecordUpload(u.name, telemetry.Skipped)
		u.log.skipped(ctx, u.name, err)
		return false
	}

	var attempt int
	err := u.policy.Start(ctx, u.name, func(ctx context.Context) (bool, error) {
		attempt++
		err := u.upload(ctx, r, attempt)
		if err == nil {
			return false, nil
		}
		u.log.attemptFailed(ctx, u.name, attempt, err)
		return !errors.Is(err, ErrCircuitOpen), err
	})
	if err != nil {
		u.recorder.RecordUpload(u.name, telemetry.Dropped)
		u.log.dropped(ctx, u.name, err)
		return false
	}

	u.recorder.RecordUpload(u.name, telemetry.Delivered)
	u.log.delivered(ctx, u.name, attempt)
	return true
}

// LastError describes the most recent failure, or is empty after a success.
func (u *Uploader) LastError() string {
	return u.lastErr
}

// MaxAttempts returns the number of writes allowed per reading.
func (u *Uploader) MaxAttempts() int {
	return u.attempts
}

// ConsecutiveFailures returns the number of writes that failed since the last
// success.
func (u *Uploader) ConsecutiveFailures() int {
	return u.failures
}

// Disabled reports whether the circuit breaker is open.
func (u *Uploader) Disabled() bool {
	return u.threshold > 0 && u.failures >= u.threshold
}

// ResetBreaker closes the circuit breaker.
func (u *Uploader) ResetBreaker() {
	u.failures = 0
}

func (u *Uploader) probe(ctx context.Context) error {
	err := u.sink.Probe(ctx)
	if err != nil {
		u.lastErr = err.Error()
	}
	return err
}

func (u *Uploader) upload(ctx context.Context, r *Reading, attempt int) error {
	if u.Disabled() {
		u.lastErr = ErrCircuitOpen.Error()
		return ErrCircuitOpen
	}

	status, err := u.write(ctx, r)

	a := telemetry.UploadAttempt{
		Sink:       u.name,
		Outcome:    telemetry.Success,
		HTTPStatus: status,
		Attempt:    attempt,
	}
	if err != nil {
		a.Outcome = telemetry.Failure
	}
	u.recorder.RecordAttempt(a)

	if err != nil {
		u.lastErr = err.Error()
		u.failures++
		if u.threshold > 0 && u.failures == u.threshold {
			u.log.breakerOpened(ctx, u.name, u.failures)
		}
		return err
	}

	u.failures = 0
	u.lastErr = ""
	return nil
}

// write shields the loop from a misbehaving backend.
func (u *Uploader) write(ctx context.Context, r *Reading) (status int, err error) {
	defer func() {
		if p := recover(); p != nil {
			status, err = 0, NewTransportError("sink panicked", panicError{p})
		}
	}()
	return u.sink.Write(ctx, r)
}
