package notify

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscription struct {
	sender string
	ch     chan *dbus.Signal
	closed bool
}

func newFakeSubscription(sender string) *fakeSubscription {
	return &fakeSubscription{sender: sender, ch: make(chan *dbus.Signal, 32)}
}

func (f *fakeSubscription) Signals() <-chan *dbus.Signal { return f.ch }
func (f *fakeSubscription) Sender() string              { return f.sender }
func (f *fakeSubscription) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSubscription) push(sender, name string, body ...interface{}) {
	f.ch <- &dbus.Signal{Sender: sender, Path: ObjectPath, Name: name, Body: body}
}

func collect(t *testing.T, sub Subscription, id uint32) []ActionResponse {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var got []ActionResponse
	err := WaitForAction(ctx, sub, id, func(r ActionResponse) {
		got = append(got, r)
	})
	require.NoError(t, err)
	return got
}

func TestWaitForActionDecodesClosed(t *testing.T) {
	for code, want := range map[uint32]Reason{
		1:  ReasonExpired,
		2:  ReasonDismissedByUser,
		3:  ReasonClosedByCall,
		99: Reason(99),
	} {
		sub := newFakeSubscription(":1.1")
		sub.push(":1.1", SignalNotificationClosed, uint32(5), code)
		got := collect(t, sub, 5)
		require.Len(t, got, 1)
		assert.Equal(t, Closed(want), got[0])
	}
}

func TestWaitForActionDecodesAction(t *testing.T) {
	sub := newFakeSubscription(":1.1")
	sub.push(":1.1", SignalActionInvoked, uint32(5), "open")
	got := collect(t, sub, 5)
	require.Len(t, got, 1)
	assert.Equal(t, CustomAction("open"), got[0])
	assert.False(t, got[0].IsClosed())
}

func TestWaitForActionDiscardsUnrelatedSignals(t *testing.T) {
	sub := newFakeSubscription(":1.1")
	// another notification
	sub.push(":1.1", SignalNotificationClosed, uint32(4), uint32(1))
	// another service
	sub.push(":1.9", SignalNotificationClosed, uint32(5), uint32(1))
	// unknown member
	sub.push(":1.1", Interface+".Something", uint32(5))
	// malformed body
	sub.push(":1.1", SignalNotificationClosed, uint32(5))
	// other object
	sub.ch <- &dbus.Signal{Sender: ":1.1", Path: "/elsewhere", Name: SignalNotificationClosed, Body: []interface{}{uint32(5), uint32(1)}}
	sub.push(":1.1", SignalNotificationClosed, uint32(5), uint32(3))
	// never reached, the first match ends the wait
	sub.push(":1.1", SignalNotificationClosed, uint32(5), uint32(1))

	got := collect(t, sub, 5)
	require.Len(t, got, 1)
	assert.Equal(t, Closed(ReasonClosedByCall), got[0])
	assert.Len(t, sub.ch, 1)
}

func TestWaitForActionStopsOnContext(t *testing.T) {
	sub := newFakeSubscription(":1.1")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := WaitForAction(ctx, sub, 1, func(ActionResponse) {
		t.Fatal("handler must not run")
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForActionClosedSubscription(t *testing.T) {
	sub := newFakeSubscription(":1.1")
	close(sub.ch)
	err := WaitForAction(context.Background(), sub, 1, func(ActionResponse) {})
	require.ErrorIs(t, err, ErrTransport)
}

func TestHandleOnCloseSkipsActions(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(8)}}
	c, err := New(tr)
	require.NoError(t, err)

	h, err := c.Show(context.Background(), Notification{Summary: "s"})
	require.NoError(t, err)
	assert.EqualValues(t, 8, h.ID())

	tr.sub.push(":1.1", SignalActionInvoked, uint32(8), "open")
	tr.sub.push(":1.1", SignalNotificationClosed, uint32(8), uint32(2))

	var reasons []Reason
	require.NoError(t, h.OnClose(context.Background(), func(r Reason) {
		reasons = append(reasons, r)
	}))
	assert.Equal(t, []Reason{ReasonDismissedByUser}, reasons)
	assert.True(t, tr.sub.closed)

	require.ErrorIs(t, h.Update(context.Background()), ErrHandleConsumed)
	require.ErrorIs(t, h.CloseContext(context.Background()), ErrHandleConsumed)
}

func TestHandleUpdateReplacesID(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(8)}}
	c, err := New(tr)
	require.NoError(t, err)
	h, err := c.Show(context.Background(), Notification{Summary: "first"})
	require.NoError(t, err)

	h.Modify(func(n *Notification) { n.Summary = "second" })
	tr.reply = []interface{}{uint32(9)}
	require.NoError(t, h.Update(context.Background()))

	last := tr.calls[len(tr.calls)-1]
	assert.Equal(t, uint32(8), last.args[1])
	assert.Equal(t, "second", last.args[3])
	assert.EqualValues(t, 9, h.ID())
	assert.Equal(t, "second", h.Notification().Summary)
}

func TestHandleCloseIsBestEffort(t *testing.T) {
	tr := &fakeTransport{reply: []interface{}{uint32(8)}}
	c, err := New(tr)
	require.NoError(t, err)
	h, err := c.Show(context.Background(), Notification{})
	require.NoError(t, err)

	tr.err = transportError(assert.AnError)
	h.Close()

	last := tr.calls[len(tr.calls)-1]
	assert.Equal(t, "org.freedesktop.Notifications.CloseNotification", last.method)
	assert.Equal(t, []interface{}{uint32(8)}, last.args)
	assert.True(t, tr.sub.closed)
}
