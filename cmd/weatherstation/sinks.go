// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/config"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/controller"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/archive"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/docdb"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/dynamo"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/firebase"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/mqtt"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink/thingspeak"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
)

type sinks struct {
	uploaders  []controller.Uploader
	registries []*docdb.Registry
	closers    []func(context.Context)
	log        *slog.Logger
}

// newSinks builds an uploader for every enabled sink. A sink that cannot be
// set up is logged and left out; acquisition runs without it.
func newSinks(
	ctx context.Context,
	cfg *config.Config,
	id device.Identity,
	tel *telemetry.Telemetry,
	log *slog.Logger,
) *sinks {
	s := &sinks{log: log}

	skip := func(name string, err error) {
		log.Warn("sink disabled", "sink", name, "error", err)
	}

	add := func(backend sink.Sink, c config.Sink) {
		s.uploaders = append(s.uploaders, sink.NewUploader(backend,
			sink.WithMaxAttempts(cfg.Upload.MaxAttempts),
			sink.WithBaseDelay(cfg.Upload.BaseDelay.Std()),
			sink.WithFailureThreshold(c.FailureThreshold),
			sink.WithRecorder(tel),
			sink.WithLogger(log),
		))
	}

	if c := cfg.ThingSpeak; c.Enabled {
		client, err := thingspeak.New(c.URL, c.APIKey,
			thingspeak.WithTimeout(c.Timeout.Std()),
			thingspeak.WithLogger(log),
		)
		if err != nil {
			skip(thingspeak.Name, err)
		} else {
			add(client, c.Sink)
		}
	}

	if c := cfg.Firebase; c.Enabled {
		var tokens firebase.TokenSource = firebase.StaticToken(c.Secret)
		if c.Public {
			tokens = firebase.Anonymous{}
		}
		store, err := firebase.New(c.URL, tokens,
			firebase.WithTimeout(c.Timeout.Std()),
			firebase.WithLogger(log),
		)
		if err != nil {
			skip(firebase.Name, err)
		} else {
			add(docdb.New(store), c.Sink)
			s.registries = append(s.registries,
				docdb.NewRegistry(store, id, docdb.WithLogger(log)))
		}
	}

	if c := cfg.Dynamo; c.Enabled {
		store, err := dynamo.NewFromRegion(c.Region, c.Table,
			dynamo.WithLogger(log))
		if err != nil {
			skip(dynamo.Name, err)
		} else {
			add(docdb.New(store), c.Sink)
			s.registries = append(s.registries,
				docdb.NewRegistry(store, id, docdb.WithLogger(log)))
		}
	}

	if c := cfg.MQTT; c.Enabled {
		opts := []mqtt.PublisherOption{mqtt.WithLogger(log)}
		if c.ClientID != "" {
			opts = append(opts, mqtt.WithClientID(c.ClientID))
		}
		if c.Username != "" {
			opts = append(opts, mqtt.WithCredentials{
				Username: c.Username,
				Password: c.Password,
			})
		}
		pub := mqtt.New(c.Address, c.Prefix, opts...)
		add(pub, c.Sink)
		s.closers = append(s.closers, pub.Close)
	}

	if c := cfg.Archive; c.Enabled {
		timeout := c.Timeout.Std()
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		a, err := archive.Open(connectCtx, c.DSN, archive.WithLogger(log))
		if err == nil {
			err = a.EnsureSchema(connectCtx)
		}
		cancel()
		if err != nil {
			skip(archive.Name, err)
		} else {
			add(a, c.Sink)
		}
	}

	return s
}

// online publishes the device documents. Failures are logged by the
// registry and do not stop acquisition.
func (s *sinks) online(ctx context.Context, firmware, modelName string) {
	for _, r := range s.registries {
		_ = r.PublishInfo(ctx, docdb.Info{
			FirmwareVersion: firmware,
			ModelType:       modelName,
		})
		_ = r.UpdateStatus(ctx, true)
	}
}

func (s *sinks) offline(ctx context.Context) {
	for _, r := range s.registries {
		_ = r.UpdateStatus(ctx, false)
	}
}

func (s *sinks) close(ctx context.Context) {
	for _, c := range s.closers {
		c(ctx)
	}
}
