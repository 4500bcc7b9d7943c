// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor

import (
	"context"
	"fmt"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"periph.io/x/periph/conn/physic"
)

type (
	// Env reads temperature, pressure and humidity from a periph
	// environmental sensor (such as a BME280) and the remaining channels from
	// optional scalar readers. The device drivers themselves live elsewhere.
	Env struct {
		dev   physic.SenseEnv
		light ScalarReader
		gas   ScalarReader
	}

	// ScalarReader reads a single channel from a device that is not covered
	// by physic.SenseEnv, such as a lux meter or an analog gas sensor.
	ScalarReader func(context.Context) (float64, error)

	// EnvOption represents a single Env option.
	EnvOption interface{ env(*Env) }

	// WithLight sets the illuminance reader (lux).
	WithLight ScalarReader

	// WithGas sets the gas concentration reader (ppm).
	WithGas ScalarReader
)

// NewEnv wraps a periph environmental sensor.
func NewEnv(dev physic.SenseEnv, opt ...EnvOption) *Env {
	e := &Env{dev: dev}
	for o := range options.Apply[EnvOption](opt) {
		o.env(e)
	}
	return e
}

// Read senses the device once and converts the readings to the units used by
// the pipeline. Missing scalar readers leave their channel at zero.
func (e *Env) Read(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}

	var env physic.Env
	if err := e.dev.Sense(&env); err != nil {
		return Sample{}, fmt.Errorf("sense %s: %w", e.dev, err)
	}

	s := FromPhysic(env)
	s.Timestamp = wallclock.Instance.Now()

	if e.light != nil {
		lux, err := e.light(ctx)
		if err != nil {
			return Sample{}, fmt.Errorf("read illuminance: %w", err)
		}
		s.Illuminance = lux
	}
	if e.gas != nil {
		ppm, err := e.gas(ctx)
		if err != nil {
			return Sample{}, fmt.Errorf("read gas: %w", err)
		}
		s.GasPPM = ppm
	}
	return s, nil
}

// FromPhysic converts periph physical quantities into °C, %RH and Pa.
func FromPhysic(env physic.Env) Sample {
	return Sample{
		Temperature: float64(env.Temperature-physic.ZeroCelsius) /
			float64(physic.Kelvin),
		Humidity: float64(env.Humidity) / float64(physic.PercentRH),
		Pressure: float64(env.Pressure) / float64(physic.Pascal),
	}
}

func (o WithLight) env(e *Env) {
	e.light = ScalarReader(o)
}

func (o WithGas) env(e *Env) {
	e.gas = ScalarReader(o)
}
