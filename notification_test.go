package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	bus    string
	method string
	args   []interface{}
}

type fakeTransport struct {
	calls []fakeCall
	reply []interface{}
	err   error
	sub   *fakeSubscription
}

func (f *fakeTransport) Call(_ context.Context, bus string, method string, args ...interface{}) ([]interface{}, error) {
	f.calls = append(f.calls, fakeCall{bus: bus, method: method, args: args})
	return f.reply, f.err
}

func (f *fakeTransport) Subscribe(context.Context, string) (Subscription, error) {
	if f.sub == nil {
		f.sub = newFakeSubscription(":1.1")
	}
	return f.sub, nil
}

func TestExpiration(t *testing.T) {
	require.EqualValues(t, 0, ExpireTimeoutNever.Milliseconds())
	require.EqualValues(t, -1, ExpireTimeoutSetByNotificationServer.Milliseconds())

	// test assignment compiles:
	n := Notification{}
	n.ExpireTimeout = ExpireTimeoutNever
	n.ExpireTimeout = ExpireTimeoutSetByNotificationServer
}

func TestSendNotificationWireArguments(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(7)}}
	n := Notification{
		AppName:    "app",
		ReplacesID: 3,
		AppIcon:    "mail-unread",
		Summary:    "summary",
		Body:       "body",
		Actions: []Action{
			{Key: "cancel", Label: "Cancel"},
			{Key: "open", Label: "Open"},
		},
		ExpireTimeout: 1500 * time.Millisecond,
	}
	n.SetUrgency(UrgencyCritical)
	n.AddHint(HintResident(true))

	id, err := SendNotification(context.Background(), tr, DefaultBus, n)
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	require.Len(t, tr.calls, 1)
	call := tr.calls[0]
	assert.Equal(t, DefaultBus, call.bus)
	assert.Equal(t, "org.freedesktop.Notifications.Notify", call.method)
	require.Len(t, call.args, 8)
	assert.Equal(t, "app", call.args[0])
	assert.Equal(t, uint32(3), call.args[1])
	assert.Equal(t, []string{"cancel", "Cancel", "open", "Open"}, call.args[5])
	hints := call.args[6].(map[string]dbus.Variant)
	assert.Equal(t, byte(UrgencyCritical), hints[HintKeyUrgency].Value())
	assert.Equal(t, true, hints[HintKeyResident].Value())
	assert.Equal(t, int32(1500), call.args[7])
}

func TestSendNotificationNilHintsAreSentEmpty(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(1)}}
	_, err := SendNotification(context.Background(), tr, DefaultBus, Notification{Summary: "s"})
	require.NoError(t, err)
	assert.NotNil(t, tr.calls[0].args[6])
	assert.Equal(t, []string{}, tr.calls[0].args[5])
}

func TestSendNotificationErrors(t *testing.T) {
	tr := &fakeTransport{err: transportError(errors.New("no bus"))}
	_, err := SendNotification(context.Background(), tr, DefaultBus, Notification{})
	require.ErrorIs(t, err, ErrTransport)

	tr = &fakeTransport{reply: []interface{}{"not an id"}}
	_, err = SendNotification(context.Background(), tr, DefaultBus, Notification{})
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestGetServerInformation(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{"notifyd", "esiqveland", "0.1", "1.2"}}
	info, err := GetServerInformation(context.Background(), tr, DefaultBus)
	require.NoError(t, err)
	assert.Equal(t, ServerInformation{Name: "notifyd", Vendor: "esiqveland", Version: "0.1", SpecVersion: "1.2"}, info)

	tr = &fakeTransport{reply: []interface{}{"short"}}
	_, err = GetServerInformation(context.Background(), tr, DefaultBus)
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestGetCapabilities(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{[]string{"actions", "body"}}}
	caps, err := GetCapabilities(context.Background(), tr, DefaultBus)
	require.NoError(t, err)
	assert.Equal(t, []string{"actions", "body"}, caps)
	assert.Equal(t, "org.freedesktop.Notifications.GetCapabilities", tr.calls[0].method)
}

func TestReasonCodeRoundTrip(t *testing.T) {
	for _, r := range []Reason{ReasonExpired, ReasonDismissedByUser, ReasonClosedByCall, ReasonUnknown, 0, 5, 42, 1 << 31} {
		assert.Equal(t, r, ReasonFromCode(r.Code()))
	}
	assert.False(t, ReasonExpired.IsOther())
	assert.False(t, ReasonClosedByCall.IsOther())
	assert.True(t, Reason(42).IsOther())
	assert.Equal(t, "Other(42)", Reason(42).String())
	assert.Equal(t, "DismissedByUser", ReasonDismissedByUser.String())
}

func TestResolveBus(t *testing.T) {
	tests := []struct {
		path string
		want string
		err  bool
	}{
		{path: "", want: DefaultBus},
		{path: "  / ", want: DefaultBus},
		{path: "test", want: "org.freedesktop.Notifications.test"},
		{path: "/test/inbox/", want: "org.freedesktop.Notifications.test.inbox"},
		{path: "a//b", want: "org.freedesktop.Notifications.a.b"},
		{path: "with-dash_and_underscore", want: "org.freedesktop.Notifications.with-dash_and_underscore"},
		{path: "1leading/digit", err: true},
		{path: "has.dot", err: true},
		{path: "spa ce", err: true},
		{path: strings.Repeat("x", 300), err: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ResolveBus(tt.path)
			if tt.err {
				require.ErrorIs(t, err, ErrInvalidBusName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientUsesCustomBus(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(1)}}
	c, err := New(tr, WithCustomBus("team/alerts"))
	require.NoError(t, err)
	assert.Equal(t, "org.freedesktop.Notifications.team.alerts", c.Bus())

	_, err = c.SendNotification(context.Background(), Notification{})
	require.NoError(t, err)
	assert.Equal(t, c.Bus(), tr.calls[0].bus)

	_, err = New(tr, WithCustomBus("bad name"))
	require.ErrorIs(t, err, ErrInvalidBusName)
}
