// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor

import (
	"context"
	"time"
)

type (
	// Sample is one instantaneous reading of every channel.
	Sample struct {
		Temperature float64 // °C
		Humidity    float64 // %RH
		Pressure    float64 // Pa
		Illuminance float64 // lux
		GasPPM      float64 // ppm
		Timestamp   time.Time
	}

	// Source produces samples on demand. Implementations may block for the
	// duration of a bus transaction but must honor the context.
	Source interface {
		Read(ctx context.Context) (Sample, error)
	}

	// Channel identifies one of the sampled quantities.
	Channel int
)

// Sampled channels, in buffer order.
const (
	Temperature Channel = iota
	Humidity
	Pressure
	Illuminance
	Gas

	// NumChannels is the number of sampled channels.
	NumChannels = int(Gas) + 1
)

var channelNames = [NumChannels]string{
	"temperature",
	"humidity",
	"pressure",
	"illuminance",
	"gas",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Value returns the reading of the given channel.
func (s Sample) Value(c Channel) float64 {
	switch c {
	case Temperature:
		return s.Temperature
	case Humidity:
		return s.Humidity
	case Pressure:
		return s.Pressure
	case Illuminance:
		return s.Illuminance
	case Gas:
		return s.GasPPM
	default:
		return 0
	}
}

// With returns a copy of the sample with the given channel replaced.
func (s Sample) With(c Channel, v float64) Sample {
	switch c {
	case Temperature:
		s.Temperature = v
	case Humidity:
		s.Humidity = v
	case Pressure:
		s.Pressure = v
	case Illuminance:
		s.Illuminance = v
	case Gas:
		s.GasPPM = v
	}
	return s
}
