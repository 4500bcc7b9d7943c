// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package thingspeak

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
)

type (
	// Client writes readings to a ThingSpeak-style channel with one flat
	// update request per reading.
	Client struct {
		base     *url.URL
		apiKey   string
		http     *http.Client
		resolver sink.Resolver
		log      log.Logger
	}

	// ClientOptions are the resolved client options.
	ClientOptions struct {
		HTTPClient *http.Client
		Timeout    time.Duration
		Resolver   sink.Resolver
		Logger     *slog.Logger
	}

	// ClientOption represents a single client option.
	ClientOption interface{ client(*ClientOptions) }

	// WithHTTPClient replaces the HTTP client.
	WithHTTPClient struct{ *http.Client }

	// WithTimeout sets the per-request timeout (default 10s).
	WithTimeout time.Duration

	// WithResolver replaces the resolver used by the preflight check.
	WithResolver struct{ sink.Resolver }

	withLogger struct{ *slog.Logger }
)

const (
	// DefaultBaseURL is the public ThingSpeak API.
	DefaultBaseURL = "https://api.thingspeak.com"

	// MinInterval is the service's floor between accepted updates on a free
	// channel.
	MinInterval = 15 * time.Second

	defaultTimeout = 10 * time.Second
	maxBody        = 1 << 10
)

// Name is the sink name used in logs and telemetry.
const Name = "thingspeak"

// New creates a channel client for the given base URL and write API key.
func New(baseURL, apiKey string, opt ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("thingspeak: write API key must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("thingspeak: invalid base URL %q", baseURL)
	}

	opts := ClientOptions{Timeout: defaultTimeout}
	opts.Apply(opt)

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		base:     base,
		apiKey:   apiKey,
		http:     hc,
		resolver: opts.Resolver,
		log:      log.Wrap(opts.Logger),
	}, nil
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return withLogger{logger}
}

// Name implements sink.Sink.
func (*Client) Name() string {
	return Name
}

// Probe resolves the service host.
func (c *Client) Probe(ctx context.Context) error {
	return sink.ResolveHost(ctx, c.resolver, c.base.String())
}

// Write sends one update. The service answers 200 with the new entry id, or
// with "0" when it refuses the update (for instance when rate limited).
func (c *Client) Write(ctx context.Context, r *sink.Reading) (int, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.UpdateURL(r),
		nil,
	)
	if err != nil {
		return 0, sink.NewTransportError("build update request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, sink.NewTransportError("send update", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, sink.NewTransportError("read update response", err)
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, &sink.RejectionError{
			StatusCode: resp.StatusCode,
			Body:       text,
		}
	}

	entry, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return resp.StatusCode, sink.NewTransportError(
			fmt.Sprintf("unexpected update response %q", text), err,
		)
	}
	if entry == 0 {
		return resp.StatusCode, &sink.RejectionError{
			StatusCode: resp.StatusCode,
			Body:       "update refused (entry id 0)",
		}
	}

	c.log.Log(ctx, slog.LevelDebug, "channel updated",
		slog.Uint64("entry_id", entry),
	)
	return resp.StatusCode, nil
}

// UpdateURL renders the update request for a reading. Pressure is sent in
// hPa.
func (c *Client) UpdateURL(r *sink.Reading) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("field1", formatFloat(r.Sample.Temperature, 2))
	q.Set("field2", formatFloat(r.Sample.Humidity, 2))
	q.Set("field3", formatFloat(r.Sample.Pressure/100, 2))
	q.Set("field4", formatFloat(r.Sample.Illuminance, 2))
	q.Set("field5", formatFloat(r.Sample.GasPPM, 0))
	q.Set("field6", strconv.Itoa(int(r.Prediction.Class)))
	q.Set("field7", strconv.FormatUint(r.Prediction.Micros(), 10))
	if r.Signal != nil {
		q.Set("field8", strconv.Itoa(*r.Signal))
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/update"
	u.RawQuery = q.Encode()
	return u.String()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func (o WithHTTPClient) client(opt *ClientOptions) {
	opt.HTTPClient = o.Client
}

func (o WithTimeout) client(opt *ClientOptions) {
	if o > 0 {
		opt.Timeout = time.Duration(o)
	}
}

func (o WithResolver) client(opt *ClientOptions) {
	opt.Resolver = o.Resolver
}

func (o withLogger) client(opt *ClientOptions) {
	opt.Logger = o.Logger
}

// Apply resolves the provided list of options.
func (o *ClientOptions) Apply(
	opts []ClientOption,
	rest ...ClientOption,
) {
	for opt := range options.Apply[ClientOption](opts, rest) {
		opt.client(o)
	}
}

func (o *ClientOptions) client(opt *ClientOptions) {
	if o != nil {
		*opt = *o
	}
}
