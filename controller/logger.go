// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package controller

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
)

type logger struct{ log.Logger }

func (l *logger) started(
	ctx context.Context,
	runID string,
	sample, predict time.Duration,
) {
	l.Log(ctx, slog.LevelInfo, "acquisition started",
		slog.String("run_id", runID),
		slog.Duration("sample_period", sample),
		slog.Duration("predict_period", predict),
	)
}

func (l *logger) alreadyRunning(ctx context.Context, runID string) {
	l.Log(ctx, slog.LevelWarn, "acquisition already running",
		slog.String("run_id", runID),
	)
}

func (l *logger) stopped(
	ctx context.Context,
	runID string,
	elapsed time.Duration,
	snap telemetry.Snapshot,
) {
	if !l.Enabled(ctx, slog.LevelInfo) {
		return
	}
	attrs := []slog.Attr{
		slog.String("run_id", runID),
		slog.Duration("duration", elapsed),
	}
	attrs = append(attrs, summary(snap)...)
	l.Log(ctx, slog.LevelInfo, "acquisition stopped", attrs...)
}

func (l *logger) reset(ctx context.Context, sinks int) {
	l.Log(ctx, slog.LevelInfo, "counters and circuit breakers reset",
		slog.Int("sinks", sinks),
	)
}

func (l *logger) stats(ctx context.Context, state State, snap telemetry.Snapshot) {
	if !l.Enabled(ctx, slog.LevelInfo) {
		return
	}
	attrs := []slog.Attr{
		slog.String("state", state.String()),
		slog.Duration("uptime", snap.Uptime()),
	}
	attrs = append(attrs, summary(snap)...)
	l.Log(ctx, slog.LevelInfo, "statistics", attrs...)
}

func (l *logger) sampleFailed(ctx context.Context, err error) {
	l.Warn(ctx, "sensor read failed", err)
}

func (l *logger) sampled(ctx context.Context, s sensor.Sample, filled int) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := log.Reflect(s)
	attrs = append(attrs, slog.Int("window", filled))
	l.Log(ctx, slog.LevelDebug, "sample", attrs...)
}

func (l *logger) outOfRange(
	ctx context.Context,
	features []model.Feature,
	scaled model.Features,
) {
	if !l.Enabled(ctx, slog.LevelWarn) {
		return
	}
	attrs := make([]slog.Attr, 0, len(features))
	for _, f := range features {
		attrs = append(attrs, slog.Float64(f.String(), scaled[f]))
	}
	l.Log(ctx, slog.LevelWarn, "features outside calibration range", attrs...)
}

func (l *logger) invalidClass(ctx context.Context, class model.Class) {
	l.Log(ctx, slog.LevelError, "classifier returned an unknown class",
		slog.Int("class", int(class)),
	)
}

func (l *logger) predicted(ctx context.Context, r *sink.Reading, full bool) {
	l.Log(ctx, slog.LevelInfo, "prediction",
		slog.String("class", r.Prediction.Class.String()),
		slog.Int("class_index", int(r.Prediction.Class)),
		slog.Duration("inference", r.Prediction.Inference),
		slog.Float64("temperature", r.Sample.Temperature),
		slog.Float64("humidity", r.Sample.Humidity),
		slog.Float64("pressure", r.Sample.Pressure),
		slog.Float64("lux", r.Sample.Illuminance),
		slog.Float64("gas_ppm", r.Sample.GasPPM),
		slog.String("light", sensor.LightCondition(r.Sample.Illuminance)),
		slog.String("air_quality", sensor.AirQuality(r.Sample.GasPPM)),
		slog.Bool("window_full", full),
	)
}

// summary renders the counters of a snapshot, with success rates and the
// class distribution alongside the raw numbers.
func summary(snap telemetry.Snapshot) []slog.Attr {
	attrs := log.Reflect(struct {
		Readings     uint64
		Predictions  uint64
		Distribution map[string]float64
	}{snap.Readings, snap.Predictions, snap.Distribution()})

	for name, s := range sortedSinks(snap.Sinks) {
		group := log.Reflect(s)
		group = append(group, slog.Float64("success_rate", s.SuccessRate()))
		args := make([]any, len(group))
		for i, a := range group {
			args[i] = a
		}
		attrs = append(attrs, slog.Group(name, args...))
	}
	return attrs
}

func sortedSinks(
	m map[string]telemetry.SinkStats,
) iter.Seq2[string, telemetry.SinkStats] {
	return func(yield func(string, telemetry.SinkStats) bool) {
		for _, name := range slices.Sorted(maps.Keys(m)) {
			if !yield(name, m[name]) {
				return
			}
		}
	}
}
