// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package docdb

import (
	"context"
	"errors"
	"log/slog"
	"path"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/wallclock"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/retry"
)

type (
	// Registry maintains the device's info and status documents next to its
	// readings.
	Registry struct {
		store  Store
		id     device.Identity
		policy retry.Policy
		logger *slog.Logger
		log    log.Logger
	}

	// Info describes the device and the model it runs.
	Info struct {
		FirmwareVersion string `json:"firmware_version" dynamodbav:"firmware_version"`
		ModelType       string `json:"model_type" dynamodbav:"model_type"`
		MACAddress      string `json:"mac_address" dynamodbav:"mac_address"`
		LastBoot        int64  `json:"last_boot" dynamodbav:"last_boot"`
	}

	// Status is the liveness document.
	Status struct {
		Online   bool  `json:"online" dynamodbav:"online"`
		LastSeen int64 `json:"last_seen" dynamodbav:"last_seen"`
	}

	// RegistryOption represents a single registry option.
	RegistryOption interface{ registry(*Registry) }

	// WithPolicy sets the retry policy for registry writes.
	WithPolicy struct{ retry.Policy }

	withLogger struct{ *slog.Logger }
)

var errNotReady = errors.New("database session not ready")

// NewRegistry creates a registry for the device. By default writes are
// retried with exponential backoff for up to five attempts.
func NewRegistry(
	store Store,
	id device.Identity,
	opt ...RegistryOption,
) *Registry {
	r := &Registry{store: store, id: id}
	for o := range options.Apply[RegistryOption](opt) {
		o.registry(r)
	}
	if r.policy == nil {
		r.policy = &retry.ExponentialBackoff{
			MaxAttempts: 5,
			Logger:      r.logger,
		}
	}
	return r
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return withLogger{logger}
}

// PublishInfo writes /devices/{id}/info.
func (r *Registry) PublishInfo(ctx context.Context, info Info) error {
	if info.MACAddress == "" {
		info.MACAddress = r.id.MAC()
	}
	if info.LastBoot == 0 {
		info.LastBoot = wallclock.Instance.Now().Unix()
	}
	return r.put(ctx, "info", info)
}

// UpdateStatus writes /devices/{id}/status with the current time.
func (r *Registry) UpdateStatus(ctx context.Context, online bool) error {
	return r.put(ctx, "status", Status{
		Online:   online,
		LastSeen: wallclock.Instance.Now().Unix(),
	})
}

func (r *Registry) put(ctx context.Context, name string, doc any) error {
	p := path.Join(DevicePath(r.id), name)
	err := r.policy.Start(ctx, "docdb "+name, func(ctx context.Context) (bool, error) {
		if !r.store.Ready() {
			return true, errNotReady
		}
		_, err := r.store.Put(ctx, p, doc)
		return err != nil, err
	})
	if err != nil {
		r.log.Warn(ctx, "device document not written", err,
			slog.String("path", p),
		)
		return err
	}
	r.log.Log(ctx, slog.LevelInfo, "device document written",
		slog.String("path", p),
	)
	return nil
}

func (o WithPolicy) registry(r *Registry) {
	r.policy = o.Policy
}

func (o withLogger) registry(r *Registry) {
	r.logger = o.Logger
	r.log = log.Wrap(o.Logger)
}
