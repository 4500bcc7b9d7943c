// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/config"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sensor"
	"github.com/stretchr/testify/require"
)

func TestSimulatorSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Seed = 7

	src, closeSource, err := newSource(cfg)
	require.NoError(t, err)
	defer closeSource()

	require.IsType(t, &sensor.Simulator{}, src)
	_, err = src.Read(context.Background())
	require.NoError(t, err)
}

func TestReplaySourceMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Kind = config.SourceReplay
	cfg.Source.ReplayPath = filepath.Join(t.TempDir(), "missing.csv")

	_, _, err := newSource(cfg)
	require.Error(t, err)
}
