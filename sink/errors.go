// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sink

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrCircuitOpen is returned once a sink has failed too many times in a row.
// The sink stays disabled until the breaker is reset explicitly.
var ErrCircuitOpen = errors.New("sink disabled after consecutive failures")

// ConnectivityError indicates that the backend could not be reached: name
// resolution failed, the network is down or the backend session is not
// ready. Nothing was written and no attempt is consumed.
type ConnectivityError struct {
	Host    string
	wrapped error
	message string
}

// NewConnectivityError builds a ConnectivityError.
func NewConnectivityError(host, message string, err error) *ConnectivityError {
	return &ConnectivityError{Host: host, message: message, wrapped: err}
}

func (e *ConnectivityError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Host, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Host, e.message)
}

func (e *ConnectivityError) Unwrap() error {
	return e.wrapped
}

// TransportError indicates that a request was sent but no usable response
// came back.
type TransportError struct {
	wrapped error
	message string
}

// NewTransportError builds a TransportError.
func NewTransportError(message string, err error) *TransportError {
	return &TransportError{message: message, wrapped: err}
}

func (e *TransportError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *TransportError) Unwrap() error {
	return e.wrapped
}

// RejectionError indicates a well-formed response that refused the write.
type RejectionError struct {
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("write rejected with status %d: %s",
			e.StatusCode, e.Body)
	}
	return fmt.Sprintf("write rejected with status %d", e.StatusCode)
}

// Attrs exposes the response details for structured logging.
func (e *RejectionError) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("status", e.StatusCode),
		slog.String("body", e.Body),
	}
}

type panicError struct{ value any }

func (e panicError) Error() string {
	return fmt.Sprint(e.value)
}
