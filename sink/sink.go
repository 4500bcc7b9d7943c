// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"context"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
)

type (
	// Sink is an upload backend. Probe checks that the backend can be
	// reached without writing anything; Write performs exactly one write and
	// returns the protocol status it observed (zero if none). Both must honor
	// the context and must not retry internally.
	Sink interface {
		Name() string
		Probe(ctx context.Context) error
		Write(ctx context.Context, r *Reading) (status int, err error)
	}

	// Reading is the payload handed to every sink after a classification.
	Reading struct {
		Device     device.Identity
		Sample     sensor.Sample
		Prediction model.Prediction
		Timestamp  time.Time

		// Signal is the wireless signal strength in dBm, when known.
		Signal *int
	}

	// Document is the flat JSON form of a reading shared by the document,
	// message and archive sinks.
	Document struct {
		Temperature   float64 `json:"temperature" dynamodbav:"temperature"`
		Humidity      float64 `json:"humidity" dynamodbav:"humidity"`
		Pressure      float64 `json:"pressure" dynamodbav:"pressure"`
		Lux           float64 `json:"lux" dynamodbav:"lux"`
		GasPPM        float64 `json:"gas_ppm" dynamodbav:"gas_ppm"`
		GasQuality    string  `json:"gas_quality" dynamodbav:"gas_quality"`
		LightLevel    string  `json:"light_level" dynamodbav:"light_level"`
		Prediction    string  `json:"prediction" dynamodbav:"prediction"`
		ClassIndex    int     `json:"class_index" dynamodbav:"class_index"`
		InferenceTime uint64  `json:"inference_time" dynamodbav:"inference_time"`
		Timestamp     int64   `json:"timestamp" dynamodbav:"timestamp"`
		DeviceID      string  `json:"device_id" dynamodbav:"device_id"`
		Signal        *int    `json:"signal,omitempty" dynamodbav:"signal,omitempty"`
	}
)

// Document flattens the reading. Timestamps are Unix seconds.
func (r *Reading) Document() Document {
	return Document{
		Temperature:   r.Sample.Temperature,
		Humidity:      r.Sample.Humidity,
		Pressure:      r.Sample.Pressure,
		Lux:           r.Sample.Illuminance,
		GasPPM:        r.Sample.GasPPM,
		GasQuality:    sensor.AirQuality(r.Sample.GasPPM),
		LightLevel:    sensor.LightCondition(r.Sample.Illuminance),
		Prediction:    r.Prediction.Class.String(),
		ClassIndex:    int(r.Prediction.Class),
		InferenceTime: r.Prediction.Micros(),
		Timestamp:     r.Timestamp.Unix(),
		DeviceID:      r.Device.String(),
		Signal:        r.Signal,
	}
}
