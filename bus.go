package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	dbusGetNameOwner = "org.freedesktop.DBus.GetNameOwner"

	// DefaultBus is the well-known name of the notification service.
	DefaultBus = "org.freedesktop.Notifications"
	// ObjectPath is the object every notification service is exported on.
	ObjectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	// Interface is the DBUS interface of the notification service.
	Interface  = "org.freedesktop.Notifications"

	SignalNotificationClosed = Interface + ".NotificationClosed"
	SignalActionInvoked      = Interface + ".ActionInvoked"

	callGetCapabilities      = Interface + ".GetCapabilities"
	callCloseNotification    = Interface + ".CloseNotification"
	callNotify               = Interface + ".Notify"
	callGetServerInformation = Interface + ".GetServerInformation"
	callStop                 = Interface + ".Stop"

	channelBufferSize = 10
	maxBusNameLength  = 255
)

var busNameElement = regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)

// ResolveBus maps a custom bus path to the bus name a namespaced
// notification service owns. An empty path resolves to DefaultBus.
//
//	ResolveBus("")            // org.freedesktop.Notifications
//	ResolveBus("/test/inbox") // org.freedesktop.Notifications.test.inbox
func ResolveBus(customPath string) (string, error) {
	path := strings.Trim(strings.TrimSpace(customPath), "/")
	if path == "" {
		return DefaultBus, nil
	}

	elements := []string{DefaultBus}
	for _, el := range strings.Split(path, "/") {
		if el == "" {
			continue
		}
		if !busNameElement.MatchString(el) {
			return "", fmt.Errorf("%w: element %q of %q", ErrInvalidBusName, el, customPath)
		}
		elements = append(elements, el)
	}

	name := strings.Join(elements, ".")
	if len(name) > maxBusNameLength {
		return "", fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidBusName, name, maxBusNameLength)
	}
	return name, nil
}

// Transport is the bus connection the client side needs: method calls on
// the notification object and a filtered signal subscription.
type Transport interface {
	// Call invokes a method of Interface on the service owning bus and
	// returns the reply body.
	Call(ctx context.Context, bus string, method string, args ...interface{}) ([]interface{}, error)
	// Subscribe starts signal delivery for signals sent by the owner of bus
	// on ObjectPath and Interface. Delivery is active when Subscribe returns.
	Subscribe(ctx context.Context, bus string) (Subscription, error)
}

// Subscription is a live stream of notification signals.
type Subscription interface {
	Signals() <-chan *dbus.Signal
	// Sender is the unique bus name the subscription accepts signals from.
	Sender() string
	Close() error
}

type dbusTransport struct {
	conn *dbus.Conn
}

// NewTransport returns a Transport backed by conn.
func NewTransport(conn *dbus.Conn) Transport {
	return &dbusTransport{conn: conn}
}

func (t *dbusTransport) Call(ctx context.Context, bus string, method string, args ...interface{}) ([]interface{}, error) {
	obj := t.conn.Object(bus, ObjectPath)
	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return nil, transportError(call.Err)
	}
	return call.Body, nil
}

func (t *dbusTransport) Subscribe(ctx context.Context, bus string) (Subscription, error) {
	var owner string
	call := t.conn.BusObject().CallWithContext(ctx, dbusGetNameOwner, 0, bus)
	if call.Err != nil {
		return nil, transportError(call.Err)
	}
	if err := call.Store(&owner); err != nil {
		return nil, protocolError(err)
	}

	rule := []dbus.MatchOption{
		dbus.WithMatchSender(bus),
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface(Interface),
	}
	if err := t.conn.AddMatchSignal(rule...); err != nil {
		return nil, transportError(err)
	}

	sub := &dbusSubscription{
		conn:   t.conn,
		rule:   rule,
		sender: owner,
		ch:     make(chan *dbus.Signal, channelBufferSize),
	}
	t.conn.Signal(sub.ch)
	return sub, nil
}

type dbusSubscription struct {
	conn   *dbus.Conn
	rule   []dbus.MatchOption
	sender string
	ch     chan *dbus.Signal

	once sync.Once
	err  error
}

func (s *dbusSubscription) Signals() <-chan *dbus.Signal { return s.ch }

func (s *dbusSubscription) Sender() string { return s.sender }

func (s *dbusSubscription) Close() error {
	s.once.Do(func() {
		s.conn.RemoveSignal(s.ch)
		s.err = transportError(s.conn.RemoveMatchSignal(s.rule...))
	})
	return s.err
}
