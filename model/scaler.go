// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package model

import (
	"fmt"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
)

type (
	// Feature indexes a model input.
	Feature int

	// Features is a model input vector in fixed order: temperature,
	// humidity, pressure, illuminance. Raw and scaled vectors share the type.
	Features [NumFeatures]float64

	// Bounds is the calibration range of one feature.
	Bounds struct{ Min, Max float64 }

	// Scaler applies min-max normalization with fixed calibration bounds.
	Scaler struct {
		bounds [NumFeatures]Bounds
	}
)

const (
	Temperature Feature = iota
	Humidity
	Pressure
	Illuminance

	// NumFeatures is the length of a model input vector.
	NumFeatures = int(Illuminance) + 1
)

var featureNames = [NumFeatures]string{
	"temperature",
	"humidity",
	"pressure",
	"illuminance",
}

func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

// DefaultBounds are the ranges seen in the training data.
var DefaultBounds = [NumFeatures]Bounds{
	Temperature: {Min: 19.0, Max: 30.0},
	Humidity:    {Min: 29.3, Max: 56.9},
	Pressure:    {Min: 96352.68, Max: 100301.06},
	Illuminance: {Min: 0.0, Max: 632.08},
}

// NewScaler validates the calibration bounds and returns a scaler.
func NewScaler(bounds [NumFeatures]Bounds) (Scaler, error) {
	for i, b := range bounds {
		if !(b.Max > b.Min) {
			return Scaler{}, fmt.Errorf(
				"invalid calibration bounds for %s: min %v, max %v",
				Feature(i), b.Min, b.Max,
			)
		}
	}
	return Scaler{bounds: bounds}, nil
}

// DefaultScaler returns a scaler using DefaultBounds.
func DefaultScaler() Scaler {
	return Scaler{bounds: DefaultBounds}
}

// Bounds returns the calibration range of a feature.
func (s Scaler) Bounds(f Feature) Bounds {
	return s.bounds[f]
}

// Scale normalizes raw features to [0,1] over the calibration range. Values
// outside the range are not clamped; the model was trained on the unclamped
// transform.
func (s Scaler) Scale(raw Features) Features {
	var out Features
	for i, b := range s.bounds {
		out[i] = (raw[i] - b.Min) / (b.Max - b.Min)
	}
	return out
}

// RawFeatures extracts the model inputs from an averaged sample.
func RawFeatures(s sensor.Sample) Features {
	return Features{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		Pressure:    s.Pressure,
		Illuminance: s.Illuminance,
	}
}

// OutOfRange lists the scaled features that fall outside [0,1].
func OutOfRange(scaled Features) []Feature {
	var out []Feature
	for i, v := range scaled {
		if !(v >= 0 && v <= 1) {
			out = append(out, Feature(i))
		}
	}
	return out
}
