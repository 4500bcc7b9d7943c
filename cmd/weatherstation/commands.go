// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"bufio"
	"io"
	"log/slog"
	"strings"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/controller"
)

// readCommands turns operator input into controller requests. While a run is
// active every line stops it; there is no pause state.
func readCommands(r io.Reader, ctl *controller.Controller, log *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd := parseCommand(scanner.Text(), ctl.State())
		if cmd == controller.CommandNone {
			log.Info("commands: start, stop, reset, stats")
			continue
		}
		ctl.Request(cmd)
	}
}

func parseCommand(line string, state controller.State) controller.Command {
	if state == controller.Running {
		return controller.CommandStop
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "start":
		return controller.CommandStart
	case "stop":
		return controller.CommandStop
	case "reset":
		return controller.CommandReset
	case "stats":
		return controller.CommandStats
	}
	return controller.CommandNone
}
