// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package controller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/controller"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type (
	MockUploader struct{ mock.Mock }

	MockClassifier struct{ mock.Mock }

	sourceFunc func(context.Context) (sensor.Sample, error)
)

func (m *MockUploader) Name() string {
	return m.Called().String(0)
}

func (m *MockUploader) UploadWithRetry(ctx context.Context, r *sink.Reading) bool {
	return m.Called(ctx, r).Bool(0)
}

func (m *MockUploader) ResetBreaker() {
	m.Called()
}

func (m *MockClassifier) Predict(x model.Features) model.Class {
	return m.Called(x).Get(0).(model.Class)
}

func (f sourceFunc) Read(ctx context.Context) (sensor.Sample, error) {
	return f(ctx)
}

func constant(s sensor.Sample) sensor.Source {
	return sourceFunc(func(context.Context) (sensor.Sample, error) {
		return s, nil
	})
}

var sunny = sensor.Sample{
	Temperature: 25.5,
	Humidity:    45,
	Pressure:    101325,
	Illuminance: 550,
	GasPPM:      300,
}

func useFakeClock(t *testing.T) *wallclock.Fake {
	clock := wallclock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	t.Cleanup(wallclock.Use(clock))
	return clock
}

func TestStartStopIdempotent(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()
	c := controller.New(constant(sunny), model.DefaultForest())

	require.Equal(t, controller.Idle, c.State())
	require.False(t, c.Stop(ctx))
	require.Equal(t, controller.Idle, c.State())

	require.True(t, c.Start(ctx))
	require.Equal(t, controller.Running, c.State())
	require.Equal(t, "Running", c.State().String())
	runID := c.RunID()
	require.NotEmpty(t, runID)

	c.Tick(ctx)
	require.EqualValues(t, 1, c.Telemetry().Readings())
	require.EqualValues(t, 1, c.Telemetry().Predictions())

	require.False(t, c.Start(ctx))
	require.Equal(t, runID, c.RunID())
	require.EqualValues(t, 1, c.Telemetry().Readings())
	require.EqualValues(t, 1, c.Telemetry().Predictions())

	require.True(t, c.Stop(ctx))
	require.False(t, c.Stop(ctx))
	require.Equal(t, "Idle", c.State().String())

	// Idle controllers ignore ticks.
	c.Tick(ctx)
	require.EqualValues(t, 1, c.Telemetry().Readings())
}

func TestStartResetsAcquisitionCounters(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()
	c := controller.New(constant(sunny), model.DefaultForest())

	c.Start(ctx)
	c.Tick(ctx)
	c.Stop(ctx)
	first := c.RunID()

	c.Start(ctx)
	require.NotEqual(t, first, c.RunID())
	require.Zero(t, c.Telemetry().Readings())
	require.Zero(t, c.Telemetry().Predictions())
}

func TestFirstPredictionUsesPaddedWindow(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	up := &MockUploader{}
	var got *sink.Reading
	up.On("UploadWithRetry", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*sink.Reading) }).
		Return(true).
		Once()

	c := controller.New(
		constant(sensor.Sample{Temperature: 30, Humidity: 60, Pressure: 99000, Illuminance: 600, GasPPM: 450}),
		model.DefaultForest(),
		controller.WithUploaders(up),
		controller.WithDevice("A1B2C3D4E5F6"),
	)
	c.Start(ctx)
	c.Tick(ctx)

	up.AssertExpectations(t)
	require.NotNil(t, got)
	require.Equal(t, "A1B2C3D4E5F6", got.Device.String())
	require.InDelta(t, 2.0, got.Sample.Temperature, 1e-9)
	require.InDelta(t, 4.0, got.Sample.Humidity, 1e-9)
	require.InDelta(t, 6600.0, got.Sample.Pressure, 1e-9)
	require.InDelta(t, 40.0, got.Sample.Illuminance, 1e-9)
	require.InDelta(t, 30.0, got.Sample.GasPPM, 1e-9)
	require.Equal(t, got.Timestamp, got.Sample.Timestamp)
	require.Nil(t, got.Signal)
}

func TestTickCadence(t *testing.T) {
	clock := useFakeClock(t)
	ctx := context.Background()

	up := &MockUploader{}
	up.On("UploadWithRetry", mock.Anything, mock.Anything).Return(true)

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithUploaders(up),
	)
	c.Start(ctx)
	for range 30 {
		c.Tick(ctx)
		clock.Advance(time.Second)
	}

	require.EqualValues(t, 30, c.Telemetry().Readings())
	require.EqualValues(t, 2, c.Telemetry().Predictions())
	up.AssertNumberOfCalls(t, "UploadWithRetry", 2)
}

func TestCustomPeriods(t *testing.T) {
	clock := useFakeClock(t)
	ctx := context.Background()

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithSamplePeriod(500*time.Millisecond),
		controller.WithPredictPeriod(5*time.Second),
	)
	c.Start(ctx)
	for range 20 {
		c.Tick(ctx)
		clock.Advance(250 * time.Millisecond)
	}

	require.EqualValues(t, 10, c.Telemetry().Readings())
	require.EqualValues(t, 1, c.Telemetry().Predictions())
}

func TestSunnyReferenceVector(t *testing.T) {
	clock := useFakeClock(t)
	ctx := context.Background()

	forest := model.DefaultForest()
	timed := model.ClassifierFunc(func(x model.Features) model.Class {
		clock.Advance(2 * time.Millisecond)
		return forest.Predict(x)
	})

	c := controller.New(constant(sunny), timed)
	c.Start(ctx)
	for range 16 {
		c.Tick(ctx)
		clock.Advance(time.Second)
	}
	require.EqualValues(t, 2, c.Telemetry().Predictions())

	last, ok := c.Last()
	require.True(t, ok)
	require.Equal(t, model.Sunny, last.Prediction.Class)
	require.Equal(t, 4, int(last.Prediction.Class))
	require.Equal(t, 2*time.Millisecond, last.Prediction.Inference)
	require.Less(t, last.Prediction.Inference, 10*time.Millisecond)
	require.InDelta(t, 25.5, last.Sample.Temperature, 1e-9)
	require.InDelta(t, 101325, last.Sample.Pressure, 1e-6)
	require.GreaterOrEqual(t, c.Telemetry().ClassCount(model.Sunny), uint64(1))
}

func TestClassifierSeesScaledFeatures(t *testing.T) {
	clock := useFakeClock(t)
	ctx := context.Background()

	mid := sensor.Sample{Temperature: 24.5, Humidity: 43.1, Pressure: 98326.87, Illuminance: 316.04}
	cls := &MockClassifier{}
	cls.On("Predict", mock.MatchedBy(func(x model.Features) bool {
		for _, v := range x {
			if v < 0.5-1e-9 || v > 0.5+1e-9 {
				return false
			}
		}
		return true
	})).Return(model.Cloudy).Once()
	cls.On("Predict", mock.Anything).Return(model.Foggy)

	c := controller.New(constant(mid), cls,
		controller.WithSamplePeriod(time.Second),
		controller.WithPredictPeriod(20*time.Second),
	)
	c.Start(ctx)
	for range 21 {
		c.Tick(ctx)
		clock.Advance(time.Second)
	}

	last, _ := c.Last()
	require.Equal(t, model.Cloudy, last.Prediction.Class)
	require.EqualValues(t, 1, c.Telemetry().ClassCount(model.Foggy))
	require.EqualValues(t, 1, c.Telemetry().ClassCount(model.Cloudy))
}

func TestOutOfRangeStillClassified(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	hot := sensor.Sample{Temperature: 45, Humidity: 95, Pressure: 104000, Illuminance: 2000}
	c := controller.New(constant(hot), model.DefaultForest())
	c.Start(ctx)
	c.Tick(ctx)

	_, ok := c.Last()
	require.True(t, ok)
	require.EqualValues(t, 1, c.Telemetry().Predictions())
}

func TestUploadsEverySinkRegardlessOfOutcome(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	first, second := &MockUploader{}, &MockUploader{}
	first.On("UploadWithRetry", mock.Anything, mock.Anything).Return(false).Once()
	second.On("UploadWithRetry", mock.Anything, mock.Anything).Return(true).Once()

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithUploaders(first, second),
	)
	c.Start(ctx)
	c.Tick(ctx)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestSourceErrorSkipsSample(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	failing := sourceFunc(func(context.Context) (sensor.Sample, error) {
		return sensor.Sample{}, errors.New("bus timeout")
	})
	c := controller.New(failing, model.DefaultForest())
	c.Start(ctx)
	c.Tick(ctx)

	require.Zero(t, c.Telemetry().Readings())
	require.EqualValues(t, 1, c.Telemetry().Predictions())
}

func TestInvalidClassNotUploaded(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	up := &MockUploader{}
	bad := model.ClassifierFunc(func(model.Features) model.Class { return 9 })

	c := controller.New(constant(sunny), bad, controller.WithUploaders(up))
	c.Start(ctx)
	c.Tick(ctx)

	up.AssertNotCalled(t, "UploadWithRetry", mock.Anything, mock.Anything)
	require.EqualValues(t, 1, c.Telemetry().Predictions())
	_, ok := c.Last()
	require.False(t, ok)
}

func TestSignalAttached(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithSignal(func() (int, bool) { return -58, true }),
	)
	c.Start(ctx)
	c.Tick(ctx)

	last, ok := c.Last()
	require.True(t, ok)
	require.NotNil(t, last.Signal)
	require.Equal(t, -58, *last.Signal)
}

func TestReset(t *testing.T) {
	useFakeClock(t)
	ctx := context.Background()

	tel := telemetry.New()
	up := &MockUploader{}
	up.On("UploadWithRetry", mock.Anything, mock.Anything).Return(true)
	up.On("ResetBreaker").Once()

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithUploaders(up),
		controller.WithTelemetry(tel),
	)
	c.Start(ctx)
	c.Tick(ctx)
	tel.RecordUpload("thingspeak", telemetry.Delivered)

	c.Reset(ctx)
	up.AssertExpectations(t)
	require.Zero(t, tel.Readings())
	require.Zero(t, tel.Sink("thingspeak").Total)
	require.Equal(t, controller.Running, c.State())
}

func TestRunAppliesRequestsAndStopsOnCancel(t *testing.T) {
	clock := useFakeClock(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	up := &MockUploader{}
	up.On("UploadWithRetry", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(true).
		Once()

	c := controller.New(constant(sunny), model.DefaultForest(),
		controller.WithUploaders(up),
		controller.WithPollInterval(100*time.Millisecond),
	)
	c.Request(controller.CommandStart)

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, controller.Idle, c.State())
	require.EqualValues(t, 1, c.Telemetry().Readings())
	require.EqualValues(t, 1, c.Telemetry().Predictions())
	up.AssertExpectations(t)
	require.Contains(t, clock.Waits(), 100*time.Millisecond)
}

// pollLimit cancels the loop after a fixed number of poll waits.
type pollLimit struct {
	*wallclock.Fake
	polls  int
	limit  int
	cancel context.CancelFunc
}

func (p *pollLimit) After(d time.Duration) <-chan time.Time {
	p.polls++
	if p.polls >= p.limit {
		p.cancel()
	}
	return p.Fake.After(d)
}

func TestRunStopRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t.Cleanup(wallclock.Use(&pollLimit{
		Fake:   wallclock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
		limit:  10,
		cancel: cancel,
	}))

	var c *controller.Controller
	reads := 0
	src := sourceFunc(func(context.Context) (sensor.Sample, error) {
		reads++
		switch reads {
		case 3:
			c.Request(controller.CommandStop)
		case 4:
			t.Fatal("sampled after stop was requested")
		}
		return sunny, nil
	})

	c = controller.New(src, model.DefaultForest(),
		controller.WithSamplePeriod(100*time.Millisecond),
		controller.WithPollInterval(100*time.Millisecond),
	)
	c.Request(controller.CommandStart)

	require.ErrorIs(t, c.Run(ctx), context.Canceled)
	require.Equal(t, 3, reads)
	require.Equal(t, controller.Idle, c.State())
	require.EqualValues(t, 3, c.Telemetry().Readings())
}
