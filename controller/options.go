// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package controller

import (
	"log/slog"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
)

type (
	// ControllerOptions are the resolved controller options.
	ControllerOptions struct {
		SamplePeriod  time.Duration
		PredictPeriod time.Duration
		PollInterval  time.Duration

		Device    device.Identity
		Scaler    *model.Scaler
		Telemetry *telemetry.Telemetry
		Uploaders []Uploader
		Signal    SignalFunc
		Logger    *slog.Logger
	}

	// Option represents a single controller option.
	Option interface{ controller(*ControllerOptions) }

	// WithSamplePeriod sets how often the source is read (default 1s).
	WithSamplePeriod time.Duration

	// WithPredictPeriod sets how often the window is classified and
	// uploaded (default 15s).
	WithPredictPeriod time.Duration

	// WithPollInterval sets the idle wait of the control loop (default
	// 50ms).
	WithPollInterval time.Duration

	// WithDevice sets the identity stamped on every reading.
	WithDevice device.Identity

	// WithScaler replaces the default calibration.
	WithScaler model.Scaler

	// WithSignal attaches a signal strength reading to every upload.
	WithSignal SignalFunc

	withTelemetry struct{ *telemetry.Telemetry }

	withUploaders []Uploader

	withLogger struct{ *slog.Logger }
)

const (
	DefaultSamplePeriod  = time.Second
	DefaultPredictPeriod = 15 * time.Second
	DefaultPollInterval  = 50 * time.Millisecond
)

// WithTelemetry shares an existing aggregator.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return withTelemetry{t}
}

// WithUploaders sets the sinks fed after every classification, in order.
func WithUploaders(u ...Uploader) Option {
	return withUploaders(u)
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) Option {
	return withLogger{logger}
}

// Apply resolves the provided list of options.
func (o *ControllerOptions) Apply(
	opts []Option,
	rest ...Option,
) {
	for opt := range options.Apply[Option](opts, rest) {
		opt.controller(o)
	}
}

func (o *ControllerOptions) controller(opt *ControllerOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithSamplePeriod) controller(opt *ControllerOptions) {
	opt.SamplePeriod = time.Duration(o)
}

func (o WithPredictPeriod) controller(opt *ControllerOptions) {
	opt.PredictPeriod = time.Duration(o)
}

func (o WithPollInterval) controller(opt *ControllerOptions) {
	opt.PollInterval = time.Duration(o)
}

func (o WithDevice) controller(opt *ControllerOptions) {
	opt.Device = device.Identity(o)
}

func (o WithScaler) controller(opt *ControllerOptions) {
	s := model.Scaler(o)
	opt.Scaler = &s
}

func (o WithSignal) controller(opt *ControllerOptions) {
	opt.Signal = SignalFunc(o)
}

func (o withTelemetry) controller(opt *ControllerOptions) {
	opt.Telemetry = o.Telemetry
}

func (o withUploaders) controller(opt *ControllerOptions) {
	opt.Uploaders = append(opt.Uploaders, o...)
}

func (o withLogger) controller(opt *ControllerOptions) {
	opt.Logger = o.Logger
}
