// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
)

type (
	// TokenSource supplies credentials for database requests. Signing in is
	// handled elsewhere; Ready reports whether a usable credential exists.
	TokenSource interface {
		Ready() bool
		Token(ctx context.Context) (string, error)
	}

	// StaticToken is a fixed database secret or ID token. An empty token is
	// never ready.
	StaticToken string

	// Anonymous writes without credentials. The database rules must allow
	// public writes.
	Anonymous struct{}

	// Store writes JSON documents to a Realtime Database over its REST API.
	Store struct {
		base   *url.URL
		tokens TokenSource
		http   *http.Client
		log    log.Logger
	}

	// StoreOptions are the resolved store options.
	StoreOptions struct {
		HTTPClient *http.Client
		Timeout    time.Duration
		Logger     *slog.Logger
	}

	// StoreOption represents a single store option.
	StoreOption interface{ store(*StoreOptions) }

	// WithHTTPClient replaces the HTTP client.
	WithHTTPClient struct{ *http.Client }

	// WithTimeout sets the per-request timeout (default 10s).
	WithTimeout time.Duration

	withLogger struct{ *slog.Logger }

	errorBody struct {
		Error string `json:"error"`
	}
)

// Name is the sink name used in logs and telemetry.
const Name = "firebase"

const (
	defaultTimeout = 10 * time.Second
	maxBody        = 4 << 10
)

// New creates a store for a database URL such as
// https://project-default-rtdb.firebaseio.com.
func New(
	databaseURL string,
	tokens TokenSource,
	opt ...StoreOption,
) (*Store, error) {
	base, err := url.Parse(databaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("firebase: invalid database URL %q", databaseURL)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	opts := StoreOptions{Timeout: defaultTimeout}
	opts.Apply(opt)

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Store{
		base:   base,
		tokens: tokens,
		http:   hc,
		log:    log.Wrap(opts.Logger),
	}, nil
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return withLogger{logger}
}

// Name implements docdb.Store.
func (*Store) Name() string {
	return Name
}

// Ready implements docdb.Store.
func (s *Store) Ready() bool {
	return s.tokens.Ready()
}

// Endpoint implements docdb.Store.
func (s *Store) Endpoint() string {
	return s.base.String()
}

// Put replaces the document at the path.
func (s *Store) Put(ctx context.Context, path string, doc any) (int, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("firebase: encode %s: %w", path, err)
	}

	target, err := s.url(ctx, path)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		target,
		bytes.NewReader(body),
	)
	if err != nil {
		return 0, sink.NewTransportError("build database request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, sink.NewTransportError("send database request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, sink.NewTransportError("read database response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &sink.RejectionError{
			StatusCode: resp.StatusCode,
			Body:       errorMessage(respBody),
		}
	}

	s.log.Log(ctx, slog.LevelDebug, "document written",
		slog.String("path", path),
		slog.Int("bytes", len(body)),
	)
	return resp.StatusCode, nil
}

func (s *Store) url(ctx context.Context, path string) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", sink.NewConnectivityError(s.base.Host, "no database credential", err)
	}

	u := *s.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" +
		strings.Trim(path, "/") + ".json"
	if token != "" {
		q := u.Query()
		q.Set("auth", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// errorMessage extracts the message from a {"error": "..."} body.
func errorMessage(body []byte) string {
	var e errorBody
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Ready reports whether a token is configured.
func (t StaticToken) Ready() bool {
	return t != ""
}

// Token returns the configured token.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Ready is always true.
func (Anonymous) Ready() bool {
	return true
}

// Token returns no token.
func (Anonymous) Token(context.Context) (string, error) {
	return "", nil
}

func (o WithHTTPClient) store(opt *StoreOptions) {
	opt.HTTPClient = o.Client
}

func (o WithTimeout) store(opt *StoreOptions) {
	if o > 0 {
		opt.Timeout = time.Duration(o)
	}
}

func (o withLogger) store(opt *StoreOptions) {
	opt.Logger = o.Logger
}

// Apply resolves the provided list of options.
func (o *StoreOptions) Apply(
	opts []StoreOption,
	rest ...StoreOption,
) {
	for opt := range options.Apply[StoreOption](opts, rest) {
		opt.store(o)
	}
}

func (o *StoreOptions) store(opt *StoreOptions) {
	if o != nil {
		*opt = *o
	}
}
