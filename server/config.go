package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config of a notification server. The env tags are read by
// github.com/caarlos0/env.
type Config struct {
	// BusPath selects a namespaced bus, see notify.ResolveBus.
	BusPath        string        `env:"NOTIFYD_BUS_PATH"`
	DefaultTimeout time.Duration `env:"NOTIFYD_DEFAULT_TIMEOUT" envDefault:"5s"`
	MinimumTimeout time.Duration `env:"NOTIFYD_MINIMUM_TIMEOUT" envDefault:"10ms"`
	// StopGrace is how long the bus registration outlives a stop request.
	StopGrace time.Duration `env:"NOTIFYD_STOP_GRACE" envDefault:"1s"`

	Name         string   `env:"NOTIFYD_NAME" envDefault:"notifyd"`
	Vendor       string   `env:"NOTIFYD_VENDOR" envDefault:"esiqveland"`
	Version      string   `env:"NOTIFYD_VERSION" envDefault:"0.1"`
	SpecVersion  string   `env:"NOTIFYD_SPEC_VERSION" envDefault:"1.2"`
	Capabilities []string `env:"NOTIFYD_CAPABILITIES" envSeparator:"," envDefault:"actions,body,persistence"`
}

// DefaultConfig matches the envDefault tags.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout: DefaultTimeout,
		MinimumTimeout: MinimumTimeout,
		StopGrace:      time.Second,
		Name:           "notifyd",
		Vendor:         "esiqveland",
		Version:        "0.1",
		SpecVersion:    "1.2",
		Capabilities:   []string{"actions", "body", "persistence"},
	}
}

// Validate checks the durations.
func (c Config) Validate() error {
	switch {
	case c.DefaultTimeout <= 0:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("default timeout must be positive, got %v", c.DefaultTimeout))
	case c.MinimumTimeout < 0:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("minimum timeout must not be negative, got %v", c.MinimumTimeout))
	case c.StopGrace < 0:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("stop grace must not be negative, got %v", c.StopGrace))
	}
	return nil
}

// Option configures a Service or a Server.
type Option func(*options)

type options struct {
	cfg      Config
	log      zerolog.Logger
	registry *Registry
}

func buildOptions(opts []Option) options {
	o := options{
		cfg: DefaultConfig(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	return o
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRegistry shares a Registry between services.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}
