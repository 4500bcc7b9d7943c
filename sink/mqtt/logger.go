// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"log/slog"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
)

type logger struct{ log.Logger }

func (l *logger) connected(ctx context.Context, address, clientID string) {
	l.Log(ctx, slog.LevelInfo, "connected to MQTT broker",
		slog.String("address", address),
		slog.String("client_id", clientID),
	)
}

func (l *logger) dropped(ctx context.Context, address string) {
	l.Log(ctx, slog.LevelWarn, "MQTT connection dropped after failure",
		slog.String("address", address),
	)
}

func (l *logger) disconnected(ctx context.Context, address string) {
	l.Log(ctx, slog.LevelInfo, "disconnected from MQTT broker",
		slog.String("address", address),
	)
}
