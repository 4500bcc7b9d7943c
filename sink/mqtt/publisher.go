// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"path"
	"sync/atomic"

	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/log"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/internal/options"
	"github.com/BimalaWijekoon/CSE-Weather-Model-sub001/sink"
	"github.com/eclipse/paho.golang/packets"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
)

type (
	// ConnectionProvider returns a net.Conn connected to an MQTT broker.
	ConnectionProvider func(context.Context) (net.Conn, error)

	// Publisher publishes each reading as JSON to
	// {prefix}/{deviceId}/readings. It connects on the first write and
	// discards the connection whenever a write fails, so the next write
	// starts from a fresh session.
	Publisher struct {
		address  string
		prefix   string
		clientID string
		connect  ConnectionProvider
		options  PublisherOptions

		client *paho.Client
		conn   net.Conn
		lost   atomic.Bool

		log logger
	}

	// PublisherOptions are the resolved publisher options.
	PublisherOptions struct {
		ClientID  string
		Username  string
		Password  []byte
		KeepAlive uint16
		Logger    *slog.Logger
	}

	// PublisherOption represents a single publisher option.
	PublisherOption interface{ publisher(*PublisherOptions) }

	// WithClientID sets the MQTT client id. A random id is generated
	// otherwise.
	WithClientID string

	// WithCredentials sets the username and password sent on connect.
	WithCredentials struct {
		Username string
		Password string
	}

	// WithKeepAlive sets the keep-alive in seconds (default 60).
	WithKeepAlive uint16

	withLogger struct{ *slog.Logger }
)

// Name is the sink name used in logs and telemetry.
const Name = "mqtt"

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "weather"

// TCPConnection connects to a broker over plain TCP.
func TCPConnection(address string) ConnectionProvider {
	return func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, sink.NewConnectivityError(
				address,
				"error opening TCP connection",
				err,
			)
		}
		return packets.NewThreadSafeConn(conn), nil
	}
}

// New creates a publisher for a broker at host:port.
func New(
	address, prefix string,
	opt ...PublisherOption,
) *Publisher {
	p := &Publisher{
		address: address,
		prefix:  prefix,
		connect: TCPConnection(address),
	}
	p.options.Apply(opt)
	if p.prefix == "" {
		p.prefix = DefaultPrefix
	}
	if p.options.KeepAlive == 0 {
		p.options.KeepAlive = 60
	}
	p.clientID = p.options.ClientID
	if p.clientID == "" {
		p.clientID = "weatherstation-" + uuid.NewString()
	}
	p.log = logger{log.Wrap(p.options.Logger)}
	return p
}

// WithLogger enables logging with the provided slog logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return withLogger{logger}
}

// Name implements sink.Sink.
func (*Publisher) Name() string {
	return Name
}

// ClientID is the MQTT client id used for every connection.
func (p *Publisher) ClientID() string {
	return p.clientID
}

// Topic is where readings for the device are published.
func (p *Publisher) Topic(r *sink.Reading) string {
	return path.Join(p.prefix, r.Device.String(), "readings")
}

// Probe resolves the broker host.
func (p *Publisher) Probe(ctx context.Context) error {
	return sink.ResolveHost(ctx, nil, p.address)
}

// Write publishes the reading at QoS 1 and returns the PUBACK reason code.
func (p *Publisher) Write(ctx context.Context, r *sink.Reading) (int, error) {
	if r.Device == "" {
		return 0, fmt.Errorf("reading has no device identity")
	}
	payload, err := json.Marshal(r.Document())
	if err != nil {
		return 0, err
	}

	if err := p.ensureConnected(ctx); err != nil {
		return 0, err
	}

	res, err := p.client.Publish(ctx, &paho.Publish{
		QoS:     1,
		Topic:   p.Topic(r),
		Payload: payload,
		Properties: &paho.PublishProperties{
			ContentType: "application/json",
		},
	})
	if err != nil {
		p.drop(ctx)
		if res != nil && res.ReasonCode >= packets.PubackUnspecifiedError {
			return int(res.ReasonCode), &sink.RejectionError{
				StatusCode: int(res.ReasonCode),
				Body:       err.Error(),
			}
		}
		return 0, sink.NewTransportError("publish failed", err)
	}
	return int(res.ReasonCode), nil
}

// Close disconnects from the broker, if connected.
func (p *Publisher) Close(ctx context.Context) {
	if p.client == nil {
		return
	}
	_ = p.client.Disconnect(&paho.Disconnect{
		ReasonCode: packets.DisconnectNormalDisconnection,
	})
	p.client, p.conn = nil, nil
	p.log.disconnected(ctx, p.address)
}

func (p *Publisher) ensureConnected(ctx context.Context) error {
	if p.client != nil && !p.lost.Load() {
		return nil
	}
	if p.client != nil {
		p.drop(ctx)
	}

	conn, err := p.connect(ctx)
	if err != nil {
		return err
	}

	p.lost.Store(false)
	client := paho.NewClient(paho.ClientConfig{
		ClientID: p.clientID,
		Conn:     conn,
		OnClientError: func(error) {
			p.lost.Store(true)
		},
		OnServerDisconnect: func(*paho.Disconnect) {
			p.lost.Store(true)
		},
	})

	packet := &paho.Connect{
		ClientID:   p.clientID,
		CleanStart: true,
		KeepAlive:  p.options.KeepAlive,
	}
	if p.options.Username != "" {
		packet.Username = p.options.Username
		packet.UsernameFlag = true
	}
	if len(p.options.Password) > 0 {
		packet.Password = p.options.Password
		packet.PasswordFlag = true
	}

	ack, err := client.Connect(ctx, packet)
	if err != nil {
		_ = conn.Close()
		if ack != nil && ack.ReasonCode >= packets.ConnackUnspecifiedError {
			return &sink.RejectionError{
				StatusCode: int(ack.ReasonCode),
				Body:       err.Error(),
			}
		}
		return sink.NewConnectivityError(p.address, "MQTT connect failed", err)
	}

	p.client, p.conn = client, conn
	p.log.connected(ctx, p.address, p.clientID)
	return nil
}

func (p *Publisher) drop(ctx context.Context) {
	if p.client == nil {
		return
	}
	_ = p.client.Disconnect(&paho.Disconnect{
		ReasonCode: packets.DisconnectNormalDisconnection,
	})
	_ = p.conn.Close()
	p.client, p.conn = nil, nil
	p.log.dropped(ctx, p.address)
}

func (o WithClientID) publisher(opt *PublisherOptions) {
	opt.ClientID = string(o)
}

func (o WithCredentials) publisher(opt *PublisherOptions) {
	opt.Username = o.Username
	opt.Password = []byte(o.Password)
}

func (o WithKeepAlive) publisher(opt *PublisherOptions) {
	opt.KeepAlive = uint16(o)
}

func (o withLogger) publisher(opt *PublisherOptions) {
	opt.Logger = o.Logger
}

// Apply resolves the provided list of options.
func (o *PublisherOptions) Apply(
	opts []PublisherOption,
	rest ...PublisherOption,
) {
	for opt := range options.Apply[PublisherOption](opts, rest) {
		opt.publisher(o)
	}
}

func (o *PublisherOptions) publisher(opt *PublisherOptions) {
	if o != nil {
		*opt = *o
	}
}
