// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/config"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/controller"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/device"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/model"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/telemetry"
	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel(),
		TimeFormat: time.TimeOnly,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("weather station failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	id, err := identity(cfg)
	if err != nil {
		return err
	}
	log = log.With("device", id.String())

	source, closeSource, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	forest := model.DefaultForest()
	if cfg.Model.Path != "" {
		if forest, err = model.LoadForest(cfg.Model.Path); err != nil {
			return err
		}
	}
	log.Info("model loaded", "name", forest.Name(), "trees", forest.Size())

	tel := telemetry.New()
	s := newSinks(ctx, cfg, id, tel, log)
	defer s.close(context.WithoutCancel(ctx))

	opts := []controller.Option{
		controller.WithSamplePeriod(cfg.Acquisition.SamplePeriod.Std()),
		controller.WithPredictPeriod(cfg.Acquisition.PredictPeriod.Std()),
		controller.WithPollInterval(cfg.Acquisition.PollInterval.Std()),
		controller.WithDevice(id),
		controller.WithTelemetry(tel),
		controller.WithUploaders(s.uploaders...),
		controller.WithLogger(log),
	}
	if cfg.Device.Interface != "" {
		opts = append(opts, controller.WithSignal(
			controller.InterfaceSignal(cfg.Device.Interface),
		))
	}
	ctl := controller.New(source, forest, opts...)

	s.online(ctx, cfg.Device.FirmwareVersion, forest.Name())
	defer s.offline(context.WithoutCancel(ctx))

	go readCommands(os.Stdin, ctl, log)
	log.Info("ready; type start to begin acquisition",
		"sinks", len(s.uploaders),
	)

	if err := ctl.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func identity(cfg *config.Config) (device.Identity, error) {
	if cfg.Device.ID != "" {
		return device.Identity(cfg.Device.ID), nil
	}
	id, err := device.Discover()
	if err != nil {
		return "", fmt.Errorf("device identity: %w; set device.id", err)
	}
	return id, nil
}
