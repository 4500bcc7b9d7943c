// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package config

import (
	"fmt"
	"log/slog"
)

// InvalidArgumentError indicates that a setting has an invalid value. It may
// wrap an underlying parse error.
type InvalidArgumentError struct {
	Setting string
	Value   any
	wrapped error
	message string
}

func (e *InvalidArgumentError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Setting, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Setting, e.message)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.wrapped
}

// Attrs exposes the offending setting for structured logging.
func (e *InvalidArgumentError) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("setting", e.Setting),
		slog.Any("value", e.Value),
	}
}

func invalid(setting string, value any, message string) error {
	return &InvalidArgumentError{
		Setting: setting,
		Value:   value,
		message: message,
	}
}
