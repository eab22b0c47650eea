package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Client talks to one notification service, the default one or a
// namespaced one chosen with WithCustomBus.
type Client struct {
	tr         Transport
	bus        string
	customPath string
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCustomBus targets the service registered under the namespaced bus
// derived from path. See ResolveBus.
func WithCustomBus(path string) Option {
	return func(c *Client) {
		c.customPath = path
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client that uses tr for calls and signal delivery.
func New(tr Transport, opts ...Option) (*Client, error) {
	c := &Client{
		tr:  tr,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	bus, err := ResolveBus(c.customPath)
	if err != nil {
		return nil, err
	}
	c.bus = bus
	c.log = c.log.With().Str("bus", bus).Logger()
	return c, nil
}

// Bus returns the bus name the client sends to.
func (c *Client) Bus() string {
	return c.bus
}

// SendNotification delivers n without tracking it.
func (c *Client) SendNotification(ctx context.Context, n Notification) (uint32, error) {
	return SendNotification(ctx, c.tr, c.bus, n)
}

// Show delivers n and returns a Handle to follow its lifecycle.
//
// The signal subscription is set up before the Notify call, so a close
// signal emitted right after the server accepts n is still observed.
func (c *Client) Show(ctx context.Context, n Notification) (*Handle, error) {
	sub, err := c.tr.Subscribe(ctx, c.bus)
	if err != nil {
		return nil, err
	}
	id, err := SendNotification(ctx, c.tr, c.bus, n)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}
	c.log.Debug().Uint32("id", id).Msg("notification shown")
	return &Handle{
		id:     id,
		client: c,
		note:   n,
		sub:    sub,
	}, nil
}

// Subscribe opens a signal subscription on the client's bus, for use with
// WaitForAction.
func (c *Client) Subscribe(ctx context.Context) (Subscription, error) {
	return c.tr.Subscribe(ctx, c.bus)
}

func (c *Client) GetCapabilities(ctx context.Context) ([]string, error) {
	return GetCapabilities(ctx, c.tr, c.bus)
}

func (c *Client) GetServerInformation(ctx context.Context) (ServerInformation, error) {
	return GetServerInformation(ctx, c.tr, c.bus)
}

// CloseNotification closes id and reports whether the call failed.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	return CloseNotification(ctx, c.tr, c.bus, id)
}

// Stop asks the server to shut down.
func (c *Client) Stop(ctx context.Context) (bool, error) {
	return StopServer(ctx, c.tr, c.bus)
}
