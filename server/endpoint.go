package server

import (
	"sync"
	"sync/atomic"

	notify "github.com/esiqveland/notifyd"
)

// endpoint is a single consumer conduit owned by a session actor.
// Producers hold counted Sender handles. When the last issued Sender is
// released, abandoned is closed so the actor can tell "nobody will ever
// write" apart from "somebody wrote".
type endpoint[T any] struct {
	ch        chan T
	done      chan struct{}
	abandoned chan struct{}

	mu     sync.Mutex
	refs   int
	closed bool // abandoned or stopped, no new handles

	abandonOnce sync.Once
	stopOnce    sync.Once
}

func newEndpoint[T any]() *endpoint[T] {
	return &endpoint[T]{
		ch:        make(chan T),
		done:      make(chan struct{}),
		abandoned: make(chan struct{}),
	}
}

// sender issues a counted handle. Once the endpoint is closed the handle
// comes back already released.
func (e *endpoint[T]) sender() *Sender[T] {
	s := &Sender[T]{ep: e}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		s.released.Store(true)
		return s
	}
	e.refs++
	return s
}

func (e *endpoint[T]) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		e.closed = true
		e.abandonOnce.Do(func() { close(e.abandoned) })
	}
}

// stop is called by the consumer when it no longer receives.
func (e *endpoint[T]) stop() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.stopOnce.Do(func() { close(e.done) })
}

// Sender is a producer handle on a session endpoint.
type Sender[T any] struct {
	ep       *endpoint[T]
	released atomic.Bool
}

// ActionSender delivers invoked action keys to a session.
type ActionSender = Sender[string]

// CloseSender delivers explicit close requests to a session.
type CloseSender = Sender[notify.Reason]

// Send hands v to the session. It blocks until the session takes it and
// returns false if the session already ended or s was released.
func (s *Sender[T]) Send(v T) bool {
	if s == nil || s.released.Load() {
		return false
	}
	select {
	case s.ep.ch <- v:
		return true
	case <-s.ep.done:
		return false
	}
}

// Clone issues another handle on the same endpoint.
func (s *Sender[T]) Clone() *Sender[T] {
	return s.ep.sender()
}

// Release drops the handle. Release is idempotent.
func (s *Sender[T]) Release() {
	if s == nil {
		return
	}
	if s.released.CompareAndSwap(false, true) {
		s.ep.release()
	}
}

// Controls are the producer handles given to whoever drives a session.
type Controls struct {
	Actions *ActionSender
	Close   *CloseSender
}

// InvokeAction reports key as invoked by the user.
func (c Controls) InvokeAction(key string) bool {
	return c.Actions.Send(key)
}

// CloseWith closes the session with reason.
func (c Controls) CloseWith(reason notify.Reason) bool {
	return c.Close.Send(reason)
}

// Release drops both handles.
func (c Controls) Release() {
	c.Actions.Release()
	c.Close.Release()
}
