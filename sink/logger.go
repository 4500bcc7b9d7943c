// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"context"
	"log/slog"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
)

type logger struct{ log.Logger }

func (l *logger) skipped(ctx context.Context, sink string, err error) {
	l.Warn(ctx, "upload skipped", err, slog.String("sink", sink))
}

func (l *logger) attemptFailed(
	ctx context.Context,
	sink string,
	attempt int,
	err error,
) {
	l.Warn(ctx, "upload attempt failed", err,
		slog.String("sink", sink),
		slog.Int("attempt", attempt),
	)
}

func (l *logger) delivered(ctx context.Context, sink string, attempt int) {
	l.Log(ctx, slog.LevelInfo, "upload delivered",
		slog.String("sink", sink),
		slog.Int("attempt", attempt),
	)
}

func (l *logger) dropped(ctx context.Context, sink string, err error) {
	l.Warn(ctx, "upload dropped", err, slog.String("sink", sink))
}

func (l *logger) breakerOpened(ctx context.Context, sink string, failures int) {
	l.Log(ctx, slog.LevelError, "sink disabled",
		slog.String("sink", sink),
		slog.Int("consecutive_failures", failures),
	)
}
