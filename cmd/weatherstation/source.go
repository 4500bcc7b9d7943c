// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"fmt"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/config"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/devices/bmxx80"
	"periph.io/x/periph/host"
)

// newSource builds the configured sample source and a function releasing it.
func newSource(cfg *config.Config) (sensor.Source, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceReplay:
		src, err := sensor.OpenReplay(cfg.Source.ReplayPath)
		return src, func() {}, err
	case config.SourceBME280:
		return openBME280(cfg.Source)
	default:
		var opts []sensor.SimulatorOption
		if cfg.Source.Seed != 0 {
			opts = append(opts, sensor.WithSeed(cfg.Source.Seed))
		}
		return sensor.NewSimulator(opts...), func() {}, nil
	}
}

// openBME280 reads temperature, humidity and pressure from a BME280 on an I2C
// bus. Illuminance and gas have no periph driver and read as zero.
func openBME280(c config.Source) (sensor.Source, func(), error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host: %w", err)
	}
	bus, err := i2creg.Open(c.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus %q: %w", c.I2CBus, err)
	}
	dev, err := bmxx80.NewI2C(bus, uint16(c.I2CAddress), &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, nil, fmt.Errorf("bme280 at %#x: %w", c.I2CAddress, err)
	}
	return sensor.NewEnv(dev), func() {
		_ = dev.Halt()
		_ = bus.Close()
	}, nil
}
