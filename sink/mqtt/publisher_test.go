// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/mqtt"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/require"
)

const (
	mochiTCPPort  int    = 18831
	mochiUserName string = "station"
	mochiPassword string = "barometer"
)

type message struct {
	topic   string
	payload []byte
}

func startBroker(t *testing.T) (string, <-chan message) {
	ledger := &auth.Ledger{
		// Auth disallows all by default
		Auth: auth.AuthRules{
			{
				Username: auth.RString(mochiUserName),
				Password: auth.RString(mochiPassword),
				Allow:    true,
			},
		},
	}

	server := mochi.New(&mochi.Options{InlineClient: true})
	require.NoError(t, server.AddHook(new(auth.Hook), &auth.Options{
		Ledger: ledger,
	}))

	address := fmt.Sprintf("127.0.0.1:%d", mochiTCPPort)
	require.NoError(t, server.AddListener(listeners.NewTCP(listeners.Config{
		Type:    "tcp",
		Address: address,
	})))
	require.NoError(t, server.Serve())
	t.Cleanup(func() { _ = server.Close() })

	received := make(chan message, 4)
	require.NoError(t, server.Subscribe(
		"weather/#",
		1,
		func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
			received <- message{pk.TopicName, pk.Payload}
		},
	))

	return address, received
}

func reading() *sink.Reading {
	return &sink.Reading{
		Device:     "A1B2C3D4E5F6",
		Sample:     sensor.Sample{Temperature: 25.5, Humidity: 45, Illuminance: 550},
		Prediction: model.Prediction{Class: model.Sunny, Inference: 1200 * time.Microsecond},
		Timestamp:  time.Unix(1_700_000_000, 0),
	}
}

func TestPublisher(t *testing.T) {
	address, received := startBroker(t)
	ctx := context.Background()

	p := mqtt.New(address, "",
		mqtt.WithClientID("station-test"),
		mqtt.WithCredentials{Username: mochiUserName, Password: mochiPassword},
	)
	t.Cleanup(func() { p.Close(ctx) })

	require.Equal(t, mqtt.Name, p.Name())
	require.Equal(t, "station-test", p.ClientID())
	require.NoError(t, p.Probe(ctx))

	t.Run("PublishesReading", func(t *testing.T) {
		status, err := p.Write(ctx, reading())
		require.NoError(t, err)
		require.Zero(t, status)

		var msg message
		select {
		case msg = <-received:
		case <-time.After(5 * time.Second):
			t.Fatal("reading was not delivered to the broker")
		}
		require.Equal(t, "weather/A1B2C3D4E5F6/readings", msg.topic)

		var doc sink.Document
		require.NoError(t, json.Unmarshal(msg.payload, &doc))
		require.Equal(t, "Sunny", doc.Prediction)
		require.Equal(t, 4, doc.ClassIndex)
		require.Equal(t, uint64(1200), doc.InferenceTime)
		require.Equal(t, "A1B2C3D4E5F6", doc.DeviceID)
	})

	t.Run("ReusesConnection", func(t *testing.T) {
		_, err := p.Write(ctx, reading())
		require.NoError(t, err)
		select {
		case <-received:
		case <-time.After(5 * time.Second):
			t.Fatal("second reading was not delivered")
		}
	})

	t.Run("RequiresDevice", func(t *testing.T) {
		r := reading()
		r.Device = ""
		_, err := p.Write(ctx, r)
		require.Error(t, err)
	})
}

func TestPublisherBadCredentials(t *testing.T) {
	address, _ := startBroker(t)

	p := mqtt.New(address, "weather",
		mqtt.WithCredentials{Username: mochiUserName, Password: "wrong"},
	)
	_, err := p.Write(context.Background(), reading())

	var rej *sink.RejectionError
	require.ErrorAs(t, err, &rej)
	require.GreaterOrEqual(t, rej.StatusCode, 0x80)
}

func TestPublisherNoBroker(t *testing.T) {
	p := mqtt.New("127.0.0.1:1", "weather")
	_, err := p.Write(context.Background(), reading())

	var ce *sink.ConnectivityError
	require.ErrorAs(t, err, &ce)
}

func TestTopic(t *testing.T) {
	p := mqtt.New("broker.local:1883", "site/roof")
	require.Equal(t, "site/roof/A1B2C3D4E5F6/readings", p.Topic(reading()))
	require.Contains(t, mqtt.New("broker.local:1883", "").ClientID(), "weatherstation-")
}
