package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/smazurov/onair/internal/events"
)

// ClientFactory builds an MQTT client from options. Tests replace it.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// Option configures a Publisher.
type Option func(*Publisher)

// WithClientFactory overrides how MQTT clients are constructed.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Publisher) { p.newClient = f }
}

// WithBus makes the publisher announce connection status changes.
func WithBus(bus *events.Bus) Option {
	return func(p *Publisher) { p.bus = bus }
}

// Status is the last observed broker connection state.
type Status struct {
	Connected bool      `json:"connected"`
	Reason    string    `json:"reason,omitempty"`
	Host      string    `json:"host"`
	User      string    `json:"user,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Status) String() string {
	if s.Connected {
		return fmt.Sprintf("MQTT connected (host=%s, user=%s)", s.Host, s.User)
	}
	return fmt.Sprintf("MQTT not connected (error=%s, user=%s, host=%s)", s.Reason, s.User, s.Host)
}

// Publisher sends on-air commands, rebuilding its connection for every
// message. Publish calls are serialized so commands arrive in order.
type Publisher struct {
	publishMu sync.Mutex
	client    mqtt.Client

	mu     sync.RWMutex
	cfg    Config
	status Status
	// generation discards callbacks from clients that were already replaced.
	generation uint64

	newClient ClientFactory
	bus       *events.Bus
	logger    *slog.Logger
}

// NewPublisher creates a publisher. No connection is made until the first
// Probe or Publish.
func NewPublisher(cfg Config, logger *slog.Logger, opts ...Option) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	p := &Publisher{
		cfg:       cfg,
		newClient: mqtt.NewClient,
		logger:    logger,
		status: Status{
			Reason: "not connected yet",
			Host:   cfg.Host,
			User:   cfg.Username,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the active configuration.
func (p *Publisher) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// UpdateConfig swaps the configuration used by subsequent publishes.
// The client id is kept unless the new config sets one.
func (p *Publisher) UpdateConfig(cfg Config) {
	p.mu.Lock()
	if cfg.ClientID == "" {
		cfg.ClientID = p.cfg.ClientID
	}
	p.cfg = cfg.withDefaults()
	p.mu.Unlock()
	p.logger.Info("Broker configuration updated", "host", cfg.Host, "port", cfg.Port, "topic", cfg.Topic)
}

// Status returns the last observed connection state.
func (p *Publisher) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Probe connects without publishing so the status is known before the first
// transition. The connection is kept as the current client, so its loss is
// reported, and is replaced by the next Publish.
func (p *Publisher) Probe(ctx context.Context) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.dropClientLocked()
	client, err := p.connectLocked(ctx, p.Config())
	if err != nil {
		return err
	}
	p.client = client
	return nil
}

// Publish sends the on-air state. A fresh connection is made first and the
// previous one is closed.
func (p *Publisher) Publish(ctx context.Context, on bool) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	cfg := p.Config()
	p.dropClientLocked()

	client, err := p.connectLocked(ctx, cfg)
	if err != nil {
		return err
	}
	p.client = client

	data, err := NewPayload(on).Marshal()
	if err != nil {
		return &PublishError{Topic: cfg.Topic, Err: err}
	}

	token := client.Publish(cfg.Topic, cfg.QoS, cfg.Retain, data)
	if !cfg.WaitForAck {
		go p.watchToken(token, cfg)
		p.logger.Debug("Published", "topic", cfg.Topic, "on_air", on, "qos", cfg.QoS, "retain", cfg.Retain)
		return nil
	}

	if err := waitToken(ctx, token, cfg.AckTimeout); err != nil {
		return &PublishError{Topic: cfg.Topic, Err: err}
	}
	p.logger.Debug("Published and acknowledged", "topic", cfg.Topic, "on_air", on, "qos", cfg.QoS)
	return nil
}

// Close disconnects the current client, if any.
func (p *Publisher) Close() {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	p.dropClientLocked()
	p.setStatus(false, "closed")
}

func (p *Publisher) connectLocked(ctx context.Context, cfg Config) (mqtt.Client, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL()).
		SetClientID(cfg.ClientID).
		SetProtocolVersion(cfg.ProtocolVersion).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetOnConnectHandler(func(mqtt.Client) {
			if p.current(gen) {
				p.setStatus(true, ConnackReason(0))
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			if p.current(gen) {
				p.setStatus(false, err.Error())
			}
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := p.newClient(opts)
	token := client.Connect()
	if err := waitToken(ctx, token, cfg.ConnectTimeout); err != nil {
		cerr := &ConnectError{Host: cfg.Host, Err: err}
		if rc, ok := token.(interface{ ReturnCode() byte }); ok {
			if code := rc.ReturnCode(); code > 0 && code <= 5 {
				cerr.Code = code
			}
		}
		client.Disconnect(0)
		p.setStatus(false, cerr.Reason())
		return nil, cerr
	}

	// The connect handler runs asynchronously; record success here too.
	p.setStatus(true, ConnackReason(0))
	return client, nil
}

func (p *Publisher) dropClientLocked() {
	if p.client == nil {
		return
	}
	p.client.Disconnect(250)
	p.client = nil
}

func (p *Publisher) current(gen uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation == gen
}

func (p *Publisher) setStatus(connected bool, reason string) {
	p.mu.Lock()
	prev := p.status
	p.status = Status{
		Connected: connected,
		Reason:    reason,
		Host:      p.cfg.Host,
		User:      p.cfg.Username,
		UpdatedAt: time.Now(),
	}
	next := p.status
	p.mu.Unlock()

	if prev.Connected == next.Connected && prev.Reason == next.Reason && prev.Host == next.Host {
		return
	}

	if connected {
		p.logger.Info("MQTT connected", "host", next.Host, "user", next.User)
	} else {
		p.logger.Warn(next.String())
	}

	p.bus.Publish(events.BrokerStatusEvent{
		Connected: next.Connected,
		Reason:    next.Reason,
		Host:      next.Host,
		User:      next.User,
		Timestamp: next.UpdatedAt.Format(time.RFC3339),
	})
}

// watchToken logs a fire-and-forget publish that later fails.
func (p *Publisher) watchToken(token mqtt.Token, cfg Config) {
	if !token.WaitTimeout(cfg.AckTimeout) {
		p.logger.Debug("Publish not confirmed before timeout", "topic", cfg.Topic)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("Publish failed after send", "topic", cfg.Topic, "error", err)
	}
}

func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTimeout
	}
}

// IsConnectError reports whether err came from the connect step.
func IsConnectError(err error) bool {
	var cerr *ConnectError
	return errors.As(err, &cerr)
}
