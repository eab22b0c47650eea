package server

import (
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	notify "github.com/esiqveland/notifyd"
)

// Service is the object exported on the bus as org.freedesktop.Notifications.
// Every exported method whose last return value is *dbus.Error becomes a
// D-Bus method.
type Service struct {
	emitter  Emitter
	handler  Handler
	cfg      Config
	log      zerolog.Logger
	registry *Registry

	stopped  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewService returns a Service that emits signals through emitter and hands
// accepted notifications to handler. handler may be nil. The configuration
// is checked with Config.Validate.
func NewService(emitter Emitter, handler Handler, opts ...Option) (*Service, error) {
	o := buildOptions(opts)
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		emitter:  emitter,
		handler:  handler,
		cfg:      o.cfg,
		log:      o.log,
		registry: o.registry,
		stop:     make(chan struct{}),
	}, nil
}

// Registry returns the sessions the service keeps.
func (s *Service) Registry() *Registry { return s.registry }

// Stopped is closed once Stop was called.
func (s *Service) Stopped() <-chan struct{} { return s.stop }

// Shutdown stops accepting notifications. Open sessions keep running.
func (s *Service) Shutdown() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		close(s.stop)
		s.log.Info().Int("open", s.registry.Len()).Msg("stop requested")
	})
}

func (s *Service) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return s.cfg.Name, s.cfg.Vendor, s.cfg.Version, s.cfg.SpecVersion, nil
}

func (s *Service) GetCapabilities() ([]string, *dbus.Error) {
	caps := make([]string, len(s.cfg.Capabilities))
	copy(caps, s.cfg.Capabilities)
	return caps, nil
}

// Notify accepts a notification. The id is assigned and the session
// started before the reply is sent.
func (s *Service) Notify(appName string, replacesID uint32, appIcon string, summary string, body string, actions []string, hints map[string]dbus.Variant, expireTimeout int32) (uint32, *dbus.Error) {
	if s.stopped.Load() {
		return 0, dbusError(ErrStopped)
	}

	requested := int64(expireTimeout)
	wait, expires := EffectiveWait(requested, s.cfg.DefaultTimeout, s.cfg.MinimumTimeout)
	if belowMinimum(requested, s.cfg.MinimumTimeout) {
		s.log.Warn().
			Int64("requested_ms", requested).
			Dur("minimum", s.cfg.MinimumTimeout).
			Msg("expire timeout below minimum, using minimum")
	}

	note := Notification{
		AppName:       appName,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       parseActions(actions),
		Hints:         parseHints(hints),
		ExpireTimeout: expireTimeout,
	}

	session := s.registry.open(replacesID, func(id uint32) *Session {
		note.ID = id
		var sess *Session
		sess = newSession(note, sessionParams{
			wait:    wait,
			expires: expires,
			emitter: s.emitter,
			log:     s.log,
			retire:  func() bool { return s.registry.retire(sess) },
		})
		return sess
	})
	session.start(s.handler)

	return session.ID(), nil
}

// CloseNotification closes an open notification with reason ClosedByCall.
func (s *Service) CloseNotification(id uint32) *dbus.Error {
	session, ok := s.registry.Get(id)
	if !ok || !session.Close(notify.ReasonClosedByCall) {
		return dbusError(ErrUnknownNotification)
	}
	return nil
}

// InvokeAction reports key as invoked on notification id. It is not part
// of the freedesktop interface.
func (s *Service) InvokeAction(id uint32, key string) *dbus.Error {
	session, ok := s.registry.Get(id)
	if !ok || !session.InvokeAction(key) {
		return dbusError(ErrUnknownNotification)
	}
	return nil
}

// Stop makes the server stop accepting notifications and leave the bus
// after its grace delay. It is not part of the freedesktop interface.
func (s *Service) Stop() (bool, *dbus.Error) {
	s.Shutdown()
	return true, nil
}
