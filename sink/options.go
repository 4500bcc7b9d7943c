// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"log/slog"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
)

type (
	// Recorder receives upload accounting. *telemetry.Telemetry implements
	// it.
	Recorder interface {
		RecordAttempt(telemetry.UploadAttempt)
		RecordUpload(sink string, r telemetry.Result)
	}

	// UploaderOptions are the resolved uploader options.
	UploaderOptions struct {
		MaxAttempts      int
		BaseDelay        time.Duration
		FailureThreshold int
		Recorder         Recorder
		Logger           *slog.Logger
	}

	// UploaderOption represents a single uploader option.
	UploaderOption interface{ uploader(*UploaderOptions) }

	// WithMaxAttempts bounds the number of writes per reading (default 3).
	WithMaxAttempts int

	// WithBaseDelay sets the linear backoff step (default 2s).
	WithBaseDelay time.Duration

	// WithFailureThreshold enables the circuit breaker: after this many
	// consecutive failed writes the sink is disabled. Zero disables the
	// breaker.
	WithFailureThreshold int

	withRecorder struct{ Recorder }

	withLogger struct{ *slog.Logger }

	noopRecorder struct{}
)

// WithRecorder routes upload accounting to the given recorder.
func WithRecorder(r Recorder) UploaderOption {
	return withRecorder{r}
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) UploaderOption {
	return withLogger{logger}
}

// Apply resolves the provided list of options.
func (o *UploaderOptions) Apply(
	opts []UploaderOption,
	rest ...UploaderOption,
) {
	for opt := range options.Apply[UploaderOption](opts, rest) {
		opt.uploader(o)
	}
}

func (o *UploaderOptions) uploader(opt *UploaderOptions) {
	if o != nil {
		*opt = *o
	}
}

func (o WithMaxAttempts) uploader(opt *UploaderOptions) {
	opt.MaxAttempts = int(o)
}

func (o WithBaseDelay) uploader(opt *UploaderOptions) {
	opt.BaseDelay = time.Duration(o)
}

func (o WithFailureThreshold) uploader(opt *UploaderOptions) {
	opt.FailureThreshold = int(o)
}

func (o withRecorder) uploader(opt *UploaderOptions) {
	opt.Recorder = o.Recorder
}

func (o withLogger) uploader(opt *UploaderOptions) {
	opt.Logger = o.Logger
}

func (noopRecorder) RecordAttempt(telemetry.UploadAttempt)  {}
func (noopRecorder) RecordUpload(string, telemetry.Result) {}
