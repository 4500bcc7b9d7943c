// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package controller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/window"
	"github.com/google/uuid"
)

type (
	// State is the acquisition state.
	State int32

	// Command is an operator request, applied by the control loop at the top
	// of its next iteration.
	Command int32

	// Uploader delivers classified readings. *sink.Uploader implements it.
	Uploader interface {
		Name() string
		UploadWithRetry(ctx context.Context, r *sink.Reading) bool
		ResetBreaker()
	}

	// Controller runs the acquisition cycle: it samples the source on one
	// timer and classifies and uploads the window average on another. All
	// mutable state (buffers, telemetry, timers) belongs to the goroutine
	// calling Run or Tick; only Request and State may be called from
	// elsewhere.
	Controller struct {
		source     sensor.Source
		classifier model.Classifier
		options    ControllerOptions

		window window.Set
		state  atomic.Int32

		requested atomic.Int32

		runID       string
		started     time.Time
		nextSample  time.Time
		nextPredict time.Time
		last        *sink.Reading

		log logger
	}
)

const (
	Idle State = iota
	Running
)

const (
	CommandNone Command = iota
	CommandStart
	CommandStop
	CommandReset
	CommandStats
)

// New creates an idle controller.
func New(
	source sensor.Source,
	classifier model.Classifier,
	opt ...Option,
) *Controller {
	c := &Controller{source: source, classifier: classifier}
	c.options.Apply(opt)

	if c.options.SamplePeriod <= 0 {
		c.options.SamplePeriod = DefaultSamplePeriod
	}
	if c.options.PredictPeriod <= 0 {
		c.options.PredictPeriod = DefaultPredictPeriod
	}
	if c.options.PollInterval <= 0 {
		c.options.PollInterval = DefaultPollInterval
	}
	if c.options.Scaler == nil {
		s := model.DefaultScaler()
		c.options.Scaler = &s
	}
	if c.options.Telemetry == nil {
		c.options.Telemetry = telemetry.New()
	}

	c.log = logger{log.Wrap(c.options.Logger)}
	return c
}

func (s State) String() string {
	if s == Running {
		return "Running"
	}
	return "Idle"
}

// State returns the current acquisition state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// RunID identifies the current or most recent acquisition run.
func (c *Controller) RunID() string {
	return c.runID
}

// Telemetry returns the aggregator fed by this controller.
func (c *Controller) Telemetry() *telemetry.Telemetry {
	return c.options.Telemetry
}

// Last returns the most recent classified reading, if any.
func (c *Controller) Last() (sink.Reading, bool) {
	if c.last == nil {
		return sink.Reading{}, false
	}
	return *c.last, true
}

// Request queues a command for the control loop. A later request replaces an
// earlier one that has not been applied yet. In-flight uploads are never
// interrupted.
func (c *Controller) Request(cmd Command) {
	c.requested.Store(int32(cmd))
}

// Start begins an acquisition run. Both timers are due immediately, so the
// first prediction is made from a partially filled window. Starting a running
// controller only logs a warning.
func (c *Controller) Start(ctx context.Context) bool {
	if c.State() == Running {
		c.log.alreadyRunning(ctx, c.runID)
		return false
	}

	now := wallclock.Instance.Now()
	c.options.Telemetry.ResetAcquisition()
	c.window.Reset()
	c.runID = uuid.NewString()
	c.started = now
	c.nextSample = now
	c.nextPredict = now
	c.state.Store(int32(Running))

	c.log.started(ctx, c.runID, c.options.SamplePeriod, c.options.PredictPeriod)
	return true
}

// Stop ends the current run and logs its summary. Stopping an idle
// controller does nothing.
func (c *Controller) Stop(ctx context.Context) bool {
	if c.State() != Running {
		return false
	}
	c.state.Store(int32(Idle))

	snap := c.options.Telemetry.Snapshot()
	c.log.stopped(ctx, c.runID, wallclock.Since(c.started), snap)
	return true
}

// Reset clears every counter and closes every circuit breaker.
func (c *Controller) Reset(ctx context.Context) {
	c.options.Telemetry.Reset()
	for _, u := range c.options.Uploaders {
		u.ResetBreaker()
	}
	c.log.reset(ctx, len(c.options.Uploaders))
}

// Stats logs the current counters.
func (c *Controller) Stats(ctx context.Context) {
	c.log.stats(ctx, c.State(), c.options.Telemetry.Snapshot())
}

// Tick performs whichever actions are due: sampling first, then
// classification and upload.
func (c *Controller) Tick(ctx context.Context) {
	if c.State() != Running {
		return
	}

	now := wallclock.Instance.Now()
	if !now.Before(c.nextSample) {
		c.nextSample = now.Add(c.options.SamplePeriod)
		c.sample(ctx, now)
	}
	if !now.Before(c.nextPredict) {
		c.nextPredict = now.Add(c.options.PredictPeriod)
		c.predict(ctx, now)
	}
}

// Run is the cooperative control loop. Each iteration applies a pending
// command, ticks and then waits one poll interval. It returns the context's
// error once the context is done, after stopping any active run.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.Stop(context.WithoutCancel(ctx))
			return ctx.Err()
		}

		c.apply(ctx, Command(c.requested.Swap(int32(CommandNone))))
		c.Tick(ctx)

		select {
		case <-ctx.Done():
		case <-wallclock.Instance.After(c.options.PollInterval):
		}
	}
}

func (c *Controller) apply(ctx context.Context, cmd Command) {
	switch cmd {
	case CommandStart:
		c.Start(ctx)
	case CommandStop:
		c.Stop(ctx)
	case CommandReset:
		c.Reset(ctx)
	case CommandStats:
		c.Stats(ctx)
	}
}

func (c *Controller) sample(ctx context.Context, now time.Time) {
	s, err := c.source.Read(ctx)
	if err != nil {
		c.log.sampleFailed(ctx, err)
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = now
	}

	c.window.Push(s)
	c.options.Telemetry.RecordReading()
	c.log.sampled(ctx, s, c.window.Len())
}

func (c *Controller) predict(ctx context.Context, now time.Time) {
	avg := c.window.Average()
	avg.Timestamp = now

	scaled := c.options.Scaler.Scale(model.RawFeatures(avg))
	if out := model.OutOfRange(scaled); len(out) > 0 {
		c.log.outOfRange(ctx, out, scaled)
	}

	start := wallclock.Instance.Now()
	class := c.classifier.Predict(scaled)
	inference := wallclock.Since(start)

	c.options.Telemetry.RecordPrediction(class)
	if !class.Valid() {
		c.log.invalidClass(ctx, class)
		return
	}

	r := &sink.Reading{
		Device:     c.options.Device,
		Sample:     avg,
		Prediction: model.Prediction{Class: class, Inference: inference},
		Timestamp:  now,
	}
	if c.options.Signal != nil {
		if dbm, ok := c.options.Signal(); ok {
			r.Signal = &dbm
		}
	}
	c.last = r
	c.log.predicted(ctx, r, c.window.Full())

	for _, u := range c.options.Uploaders {
		u.UploadWithRetry(ctx, r)
	}
}

// SignalFunc reports the current wireless signal strength in dBm.
type SignalFunc func() (dbm int, ok bool)

// InterfaceSignal reads the signal strength of a wireless interface.
func InterfaceSignal(iface string) SignalFunc {
	return func() (int, bool) {
		return device.WirelessSignal(iface)
	}
}
