// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package docdb

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
)

type (
	// Store is a document database reachable by path. Ready reports whether
	// the authenticated session established at startup is usable; Endpoint is
	// the address checked by the preflight.
	Store interface {
		Name() string
		Ready() bool
		Endpoint() string
		Put(ctx context.Context, path string, doc any) (status int, err error)
	}

	// Sink writes each reading as a document under the device's readings
	// collection.
	Sink struct {
		store    Store
		resolver sink.Resolver
	}

	// SinkOption represents a single sink option.
	SinkOption interface{ sink(*Sink) }

	// WithResolver replaces the resolver used by the preflight check.
	WithResolver struct{ sink.Resolver }
)

// ReadingPath is where a reading taken at the given time is stored.
func ReadingPath(id device.Identity, ts time.Time) string {
	return path.Join(DevicePath(id), "readings", strconv.FormatInt(ts.Unix(), 10))
}

// DevicePath is the root of a device's documents.
func DevicePath(id device.Identity) string {
	return path.Join("/devices", string(id))
}

// New creates a document sink over a store.
func New(store Store, opt ...SinkOption) *Sink {
	s := &Sink{store: store}
	for o := range options.Apply[SinkOption](opt) {
		o.sink(s)
	}
	return s
}

// Name implements sink.Sink.
func (s *Sink) Name() string {
	return s.store.Name()
}

// Probe requires a ready session and a resolvable endpoint.
func (s *Sink) Probe(ctx context.Context) error {
	if !s.store.Ready() {
		return sink.NewConnectivityError(
			s.store.Endpoint(),
			"database session not ready",
			nil,
		)
	}
	return sink.ResolveHost(ctx, s.resolver, s.store.Endpoint())
}

// Write stores the reading at /devices/{id}/readings/{unix seconds}.
func (s *Sink) Write(ctx context.Context, r *sink.Reading) (int, error) {
	if r.Device == "" {
		return 0, fmt.Errorf("reading has no device identity")
	}
	return s.store.Put(ctx, ReadingPath(r.Device, r.Timestamp), r.Document())
}

func (o WithResolver) sink(s *Sink) {
	s.resolver = o.Resolver
}
