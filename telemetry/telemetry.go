// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package telemetry

import (
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
)

type (
	// Outcome is the result of a single upload request.
	Outcome int

	// Result is the final disposition of one reading at one sink.
	Result int

	// UploadAttempt describes one upload request. HTTPStatus is zero when no
	// response was received or the sink does not speak HTTP.
	UploadAttempt struct {
		Sink       string
		Outcome    Outcome
		HTTPStatus int
		Attempt    int
	}

	// SinkStats are the counters of one sink. Total counts readings the sink
	// actually tried to deliver; skipped readings are counted apart.
	SinkStats struct {
		Total           uint64
		Delivered       uint64
		Dropped         uint64
		Skipped         uint64
		Requests        uint64
		RequestFailures uint64
		LastStatus      int
	}

	// Telemetry aggregates acquisition and upload counters. It is owned by
	// the control loop and is not safe for concurrent use.
	Telemetry struct {
		since       time.Time
		readings    uint64
		predictions uint64
		classes     [model.NumClasses]uint64
		sinks       map[string]*SinkStats
	}

	// Snapshot is a point-in-time copy of the counters for reporting.
	Snapshot struct {
		Since       time.Time
		Readings    uint64
		Predictions uint64
		Classes     map[string]uint64
		Sinks       map[string]SinkStats
	}
)

const (
	Success Outcome = iota
	Failure
)

const (
	// Delivered means an upload request succeeded.
	Delivered Result = iota
	// Dropped means every attempt failed and the reading was discarded.
	Dropped
	// Skipped means no attempt was made (no connectivity or breaker open).
	Skipped
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

func (r Result) String() string {
	switch r {
	case Delivered:
		return "delivered"
	case Dropped:
		return "dropped"
	default:
		return "skipped"
	}
}

// New creates an empty aggregator.
func New() *Telemetry {
	return &Telemetry{
		since: wallclock.Instance.Now(),
		sinks: map[string]*SinkStats{},
	}
}

// RecordReading counts one acquired sample.
func (t *Telemetry) RecordReading() {
	t.readings++
}

// RecordPrediction counts one classification. Invalid classes are counted as
// predictions but left out of the histogram.
func (t *Telemetry) RecordPrediction(c model.Class) {
	t.predictions++
	if c.Valid() {
		t.classes[c]++
	}
}

// RecordAttempt counts one upload request.
func (t *Telemetry) RecordAttempt(a UploadAttempt) {
	s := t.sink(a.Sink)
	s.Requests++
	if a.Outcome != Success {
		s.RequestFailures++
	}
	if a.HTTPStatus != 0 {
		s.LastStatus = a.HTTPStatus
	}
}

// RecordUpload counts the final disposition of one reading at a sink.
func (t *Telemetry) RecordUpload(sink string, r Result) {
	s := t.sink(sink)
	switch r {
	case Delivered:
		s.Total++
		s.Delivered++
	case Dropped:
		s.Total++
		s.Dropped++
	case Skipped:
		s.Skipped++
	}
}

// Readings returns the number of acquired samples.
func (t *Telemetry) Readings() uint64 {
	return t.readings
}

// Predictions returns the number of classifications.
func (t *Telemetry) Predictions() uint64 {
	return t.predictions
}

// ClassCount returns how often a class was predicted.
func (t *Telemetry) ClassCount(c model.Class) uint64 {
	if !c.Valid() {
		return 0
	}
	return t.classes[c]
}

// Sink returns the counters of a sink.
func (t *Telemetry) Sink(name string) SinkStats {
	if s, ok := t.sinks[name]; ok {
		return *s
	}
	return SinkStats{}
}

// Snapshot copies the counters.
func (t *Telemetry) Snapshot() Snapshot {
	snap := Snapshot{
		Since:       t.since,
		Readings:    t.readings,
		Predictions: t.predictions,
		Classes:     make(map[string]uint64, model.NumClasses),
		Sinks:       make(map[string]SinkStats, len(t.sinks)),
	}
	for c := range model.Class(model.NumClasses) {
		snap.Classes[c.String()] = t.classes[c]
	}
	for name, s := range t.sinks {
		snap.Sinks[name] = *s
	}
	return snap
}

// ResetAcquisition clears the acquisition counters at the start of a cycle.
// Upload counters span cycles and are kept.
func (t *Telemetry) ResetAcquisition() {
	t.since = wallclock.Instance.Now()
	t.readings = 0
	t.predictions = 0
	t.classes = [model.NumClasses]uint64{}
}

// Reset clears every counter.
func (t *Telemetry) Reset() {
	t.ResetAcquisition()
	for _, s := range t.sinks {
		*s = SinkStats{}
	}
}

func (t *Telemetry) sink(name string) *SinkStats {
	s, ok := t.sinks[name]
	if !ok {
		s = &SinkStats{}
		t.sinks[name] = s
	}
	return s
}

// SuccessRate returns the percentage of attempted readings that were
// delivered, or zero when nothing was attempted.
func (s SinkStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Delivered) / float64(s.Total)
}

// Distribution returns the share of each class among the predictions, in
// percent.
func (s Snapshot) Distribution() map[string]float64 {
	out := make(map[string]float64, len(s.Classes))
	for name, n := range s.Classes {
		if s.Predictions > 0 {
			out[name] = 100 * float64(n) / float64(s.Predictions)
		} else {
			out[name] = 0
		}
	}
	return out
}

// Uptime returns how long the counters have been accumulating.
func (s Snapshot) Uptime() time.Duration {
	return wallclock.Since(s.Since)
}
