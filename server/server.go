package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/rs/zerolog"

	notify "github.com/esiqveland/notifyd"
)

const introspectableInterface = "org.freedesktop.DBus.Introspectable"

// Conn is the part of *dbus.Conn a Server uses.
type Conn interface {
	Emitter
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
	Export(v interface{}, path dbus.ObjectPath, iface string) error
}

// Server hosts a Service on a bus name.
type Server struct {
	conn  Conn
	bus   string
	svc   *Service
	grace time.Duration
	log   zerolog.Logger
}

// NewServer prepares a server for the bus named by the configured BusPath.
func NewServer(conn Conn, handler Handler, opts ...Option) (*Server, error) {
	o := buildOptions(opts)
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	bus, err := notify.ResolveBus(o.cfg.BusPath)
	if err != nil {
		return nil, err
	}
	log := o.log.With().Str("bus", bus).Logger()
	opts = append(opts, WithLogger(log), WithRegistry(o.registry))
	svc, err := NewService(conn, handler, opts...)
	if err != nil {
		return nil, err
	}
	return &Server{
		conn:  conn,
		bus:   bus,
		svc:   svc,
		grace: o.cfg.StopGrace,
		log:   log,
	}, nil
}

// Bus returns the bus name the server registers.
func (s *Server) Bus() string { return s.bus }

// Service returns the exported object.
func (s *Server) Service() *Service { return s.svc }

// Listen takes the bus name and exports the service and its introspection
// data.
func (s *Server) Listen() error {
	reply, err := s.conn.RequestName(s.bus, dbus.NameFlagDoNotQueue)
	if err != nil {
		return errors.Join(notify.ErrTransport, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s", ErrNameTaken, s.bus)
	}

	if err := s.conn.Export(s.svc, notify.ObjectPath, notify.Interface); err != nil {
		return errors.Join(notify.ErrTransport, err)
	}
	node := &introspect.Node{
		Name: string(notify.ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    notify.Interface,
				Methods: introspect.Methods(s.svc),
				Signals: []introspect.Signal{
					{
						Name: "NotificationClosed",
						Args: []introspect.Arg{{Name: "id", Type: "u"}, {Name: "reason", Type: "u"}},
					},
					{
						Name: "ActionInvoked",
						Args: []introspect.Arg{{Name: "id", Type: "u"}, {Name: "action_key", Type: "s"}},
					},
				},
			},
		},
	}
	if err := s.conn.Export(introspect.NewIntrospectable(node), notify.ObjectPath, introspectableInterface); err != nil {
		return errors.Join(notify.ErrTransport, err)
	}
	s.log.Info().Msg("listening")
	return nil
}

// Serve blocks until ctx is done or Stop is called, then stops accepting
// notifications, waits the grace delay and leaves the bus. Open sessions
// are not cancelled.
func (s *Server) Serve(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-s.svc.Stopped():
	}
	s.svc.Shutdown()

	if s.grace > 0 {
		time.Sleep(s.grace)
	}

	var errs []error
	if err := s.conn.Export(nil, notify.ObjectPath, notify.Interface); err != nil {
		errs = append(errs, err)
	}
	if err := s.conn.Export(nil, notify.ObjectPath, introspectableInterface); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.conn.ReleaseName(s.bus); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{notify.ErrTransport}, errs...)...)
	}
	s.log.Info().Msg("left the bus")
	return nil
}

// Run is Listen followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}
