// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"testing"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/controller"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	require.Equal(t, controller.CommandStart, parseCommand(" Start ", controller.Idle))
	require.Equal(t, controller.CommandStats, parseCommand("stats", controller.Idle))
	require.Equal(t, controller.CommandReset, parseCommand("reset", controller.Idle))
	require.Equal(t, controller.CommandStop, parseCommand("stop", controller.Idle))

	require.Equal(t, controller.CommandNone, parseCommand("q", controller.Idle))
}

func TestAnyInputStopsRun(t *testing.T) {
	for _, line := range []string{"", "q", "stop", "start", "stats", "reset"} {
		require.Equal(t, controller.CommandStop,
			parseCommand(line, controller.Running), "line %q", line)
	}
}
