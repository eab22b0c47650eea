// Package bustest is an in-memory message bus for tests. A Conn acts as
// both a notify.Transport and a server.Conn; method calls are dispatched to
// exported objects by reflection like godbus does.
package bustest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	notify "github.com/esiqveland/notifyd"
)

const subscriptionBuffer = 256

var dbusErrorType = reflect.TypeOf((*dbus.Error)(nil))

// Bus connects Conns.
type Bus struct {
	mu      sync.Mutex
	conns   int
	names   map[string]*Conn
	subs    map[*subscription]struct{}
	emitted []*dbus.Signal
}

func New() *Bus {
	return &Bus{
		names: map[string]*Conn{},
		subs:  map[*subscription]struct{}{},
	}
}

// Connect returns a new connection with a unique name.
func (b *Bus) Connect() *Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conns++
	return &Conn{
		bus:     b,
		unique:  fmt.Sprintf(":1.%d", b.conns),
		objects: map[string]interface{}{},
	}
}

// Emitted returns every signal emitted on the bus so far.
func (b *Bus) Emitted() []*dbus.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*dbus.Signal, len(b.emitted))
	copy(out, b.emitted)
	return out
}

// Owner returns the unique name owning name, or "".
func (b *Bus) Owner(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.names[name]; ok {
		return c.unique
	}
	return ""
}

func (b *Bus) owner(name string) *Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.names[name]
}

func (b *Bus) deliver(sig *dbus.Signal) {
	b.mu.Lock()
	b.emitted = append(b.emitted, sig)
	var targets []*subscription
	for s := range b.subs {
		if s.sender == sig.Sender && sig.Path == notify.ObjectPath && strings.HasPrefix(sig.Name, notify.Interface+".") {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	for _, s := range targets {
		select {
		case s.ch <- sig:
		case <-s.done:
		}
	}
}

// Conn is one participant on the Bus.
type Conn struct {
	bus    *Bus
	unique string

	mu      sync.Mutex
	objects map[string]interface{}
}

// Unique returns the connection's unique name.
func (c *Conn) Unique() string { return c.unique }

func (c *Conn) RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	if owner, ok := c.bus.names[name]; ok {
		if owner == c {
			return dbus.RequestNameReplyAlreadyOwner, nil
		}
		return dbus.RequestNameReplyExists, nil
	}
	c.bus.names[name] = c
	return dbus.RequestNameReplyPrimaryOwner, nil
}

func (c *Conn) ReleaseName(name string) (dbus.ReleaseNameReply, error) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	owner, ok := c.bus.names[name]
	switch {
	case !ok:
		return dbus.ReleaseNameReplyNonExistent, nil
	case owner != c:
		return dbus.ReleaseNameReplyNotOwner, nil
	}
	delete(c.bus.names, name)
	return dbus.ReleaseNameReplyReleased, nil
}

// Export registers v for iface; a nil v removes the export.
// Every object lives on notify.ObjectPath.
func (c *Conn) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	if path != notify.ObjectPath {
		return fmt.Errorf("bustest: unsupported object path %s", path)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == nil {
		delete(c.objects, iface)
		return nil
	}
	c.objects[iface] = v
	return nil
}

func (c *Conn) object(iface string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects[iface]
}

func (c *Conn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	c.bus.deliver(&dbus.Signal{
		Sender: c.unique,
		Path:   path,
		Name:   name,
		Body:   values,
	})
	return nil
}

// Call dispatches method ("interface.Member") to the object the owner of
// bus exported for that interface.
func (c *Conn) Call(ctx context.Context, bus string, method string, args ...interface{}) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(notify.ErrTransport, err)
	}
	owner := c.bus.owner(bus)
	if owner == nil {
		return nil, callError("org.freedesktop.DBus.Error.ServiceUnknown", "no owner for "+bus)
	}
	dot := strings.LastIndex(method, ".")
	if dot < 0 {
		return nil, callError("org.freedesktop.DBus.Error.UnknownMethod", method)
	}
	obj := owner.object(method[:dot])
	if obj == nil {
		return nil, callError("org.freedesktop.DBus.Error.UnknownInterface", method[:dot])
	}
	m := reflect.ValueOf(obj).MethodByName(method[dot+1:])
	if !m.IsValid() {
		return nil, callError("org.freedesktop.DBus.Error.UnknownMethod", method)
	}

	t := m.Type()
	if t.NumIn() != len(args) || t.NumOut() == 0 || t.Out(t.NumOut()-1) != dbusErrorType {
		return nil, callError("org.freedesktop.DBus.Error.InvalidArgs", method)
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v := reflect.ValueOf(arg)
		switch {
		case !v.IsValid():
			v = reflect.Zero(t.In(i))
		case v.Type().AssignableTo(t.In(i)):
		case v.Type().ConvertibleTo(t.In(i)):
			v = v.Convert(t.In(i))
		default:
			return nil, callError("org.freedesktop.DBus.Error.InvalidArgs",
				fmt.Sprintf("%s: argument %d is %s, want %s", method, i, v.Type(), t.In(i)))
		}
		in[i] = v
	}

	out := m.Call(in)
	if derr := out[len(out)-1]; !derr.IsNil() {
		return nil, errors.Join(notify.ErrTransport, derr.Interface().(*dbus.Error))
	}
	body := make([]interface{}, 0, len(out)-1)
	for _, v := range out[:len(out)-1] {
		body = append(body, v.Interface())
	}
	return body, nil
}

func callError(name, msg string) error {
	return errors.Join(notify.ErrTransport, dbus.NewError(name, []interface{}{msg}))
}

// Subscribe delivers signals emitted by the current owner of bus.
func (c *Conn) Subscribe(ctx context.Context, bus string) (notify.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(notify.ErrTransport, err)
	}
	owner := c.bus.owner(bus)
	if owner == nil {
		return nil, callError("org.freedesktop.DBus.Error.NameHasNoOwner", bus)
	}
	s := &subscription{
		bus:    c.bus,
		sender: owner.unique,
		ch:     make(chan *dbus.Signal, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	c.bus.mu.Lock()
	c.bus.subs[s] = struct{}{}
	c.bus.mu.Unlock()
	return s, nil
}

type subscription struct {
	bus    *Bus
	sender string
	ch     chan *dbus.Signal
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Signals() <-chan *dbus.Signal { return s.ch }

func (s *subscription) Sender() string { return s.sender }

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.done)
	})
	return nil
}
