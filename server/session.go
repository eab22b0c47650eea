package server

import (
	"context"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	notify "github.com/esiqveland/notifyd"
)

// Emitter publishes signals. *dbus.Conn implements it.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Session is the actor that owns one accepted notification until it emits
// its NotificationClosed signal.
//
// Its event sources are the action endpoint, the close endpoint, the
// handler's completion and the expiry timer. Whichever is ready first wins;
// when several are ready at once the choice is up to select and must not
// be relied on.
//
// The session holds a pair of Controls of its own for Close and
// InvokeAction until it ends. So the endpoints are only abandoned once
// that pair is released too: a Handler releasing its Controls does not
// dismiss a session started by a Service.
type Session struct {
	note       Notification
	wait       time.Duration
	expires    bool
	persistent bool

	actions *endpoint[string]
	closes  *endpoint[notify.Reason]
	ctl     Controls

	supersede     chan struct{}
	supersedeOnce sync.Once
	done          chan struct{}
	reason        notify.Reason
	closed        bool

	emitter Emitter
	log     zerolog.Logger
	retire  func() bool
}

type sessionParams struct {
	wait    time.Duration
	expires bool
	emitter Emitter
	log     zerolog.Logger
	// retire is called once a close reason was picked. It returns false
	// when a replacement took over the id first.
	retire func() bool
}

func newSession(note Notification, p sessionParams) *Session {
	note.Persistent = note.Hints.Resident || !p.expires
	s := &Session{
		note:       note,
		wait:       p.wait,
		expires:    p.expires,
		persistent: note.Persistent,
		actions:    newEndpoint[string](),
		closes:     newEndpoint[notify.Reason](),
		supersede:  make(chan struct{}),
		done:       make(chan struct{}),
		emitter:    p.emitter,
		log:        p.log.With().Uint32("id", note.ID).Logger(),
		retire:     p.retire,
	}
	s.ctl = s.Controls()
	return s
}

// ID returns the notification id.
func (s *Session) ID() uint32 { return s.note.ID }

// Notification returns the snapshot the session was opened with.
func (s *Session) Notification() Notification { return s.note }

// Persistent reports whether the session survives invoked actions.
func (s *Session) Persistent() bool { return s.persistent }

// Done is closed once the session reached its terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Reason returns the close reason. ok is false while the session is open
// and for a session that was superseded by a replacement.
func (s *Session) Reason() (reason notify.Reason, ok bool) {
	select {
	case <-s.done:
		return s.reason, s.closed
	default:
		return 0, false
	}
}

// Controls issues a new pair of producer handles for the session.
// Callers Release them when they stop driving the session.
func (s *Session) Controls() Controls {
	return Controls{
		Actions: s.actions.sender(),
		Close:   s.closes.sender(),
	}
}

// Close requests the session to close with reason. It returns false if
// the session is no longer racing.
func (s *Session) Close(reason notify.Reason) bool {
	return s.ctl.CloseWith(reason)
}

// InvokeAction delivers key as if the user picked it.
func (s *Session) InvokeAction(key string) bool {
	return s.ctl.InvokeAction(key)
}

// replace ends the session without any signal; a new session takes over
// its id.
func (s *Session) replace() {
	s.supersedeOnce.Do(func() { close(s.supersede) })
}

// start spawns the handler and the actor.
func (s *Session) start(h Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	var ctl Controls
	if h != nil {
		ctl = s.Controls()
	}
	result := invoke(ctx, h, s.note, ctl)
	go s.run(cancel, result)
}

func (s *Session) run(cancel context.CancelFunc, handlerDone <-chan handlerResult) {
	defer func() {
		s.actions.stop()
		s.closes.stop()
		s.ctl.Release()
		cancel()
		close(s.done)
	}()

	var timeout <-chan time.Time
	if s.expires {
		timer := time.NewTimer(s.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	s.log.Debug().
		Bool("persistent", s.persistent).
		Dur("wait", s.wait).
		Bool("expires", s.expires).
		Msg("session open")

	reason, ok := s.race(handlerDone, timeout)
	if ok && s.retire != nil {
		ok = s.retire()
	}
	if !ok {
		s.log.Debug().Msg("session replaced")
		return
	}
	s.reason = reason
	s.closed = true
	s.log.Debug().Stringer("reason", reason).Msg("session closed")

	err := s.emitter.Emit(notify.ObjectPath, notify.SignalNotificationClosed, s.note.ID, reason.Code())
	if err != nil {
		s.log.Error().Err(err).Msg("emit NotificationClosed")
	}
}

// race waits for the first event that decides how the session closes.
// ok is false when the session was replaced.
func (s *Session) race(handlerDone <-chan handlerResult, timeout <-chan time.Time) (reason notify.Reason, ok bool) {
	for {
		select {
		case key := <-s.actions.ch:
			s.emitAction(key)
			if !s.persistent {
				return notify.ReasonClosedByCall, true
			}
		case <-s.actions.abandoned:
			s.log.Debug().Err(ErrChannelAbandoned).Str("endpoint", "action").Msg("closing as dismissed")
			return notify.ReasonDismissedByUser, true
		case reason := <-s.closes.ch:
			return reason, true
		case <-s.closes.abandoned:
			s.log.Debug().Err(ErrChannelAbandoned).Str("endpoint", "close").Msg("closing as dismissed")
			return notify.ReasonDismissedByUser, true
		case res := <-handlerDone:
			if res.ok {
				return res.reason, true
			}
			return notify.ReasonDismissedByUser, true
		case <-timeout:
			return notify.ReasonExpired, true
		case <-s.supersede:
			return 0, false
		}
	}
}

func (s *Session) emitAction(key string) {
	err := s.emitter.Emit(notify.ObjectPath, notify.SignalActionInvoked, s.note.ID, key)
	if err != nil {
		s.log.Error().Err(err).Str("action", key).Msg("emit ActionInvoked")
	}
}
