package notify

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	// ExpireTimeoutSetByNotificationServer lets the server decide how long
	// the notification is shown.
	ExpireTimeoutSetByNotificationServer time.Duration = -1 * time.Millisecond
	// ExpireTimeoutNever keeps the notification until it is closed.
	ExpireTimeoutNever time.Duration = 0
)

// Action is a (key, label) pair shown to the user.
// The key is echoed back in ActionInvoked signals.
type Action struct {
	Key   string
	Label string
}

// Notification holds all information needed for creating a notification
type Notification struct {
	AppName string
	// Setting ReplacesID atomically replaces the notification with this ID.
	// Optional.
	ReplacesID uint32
	// See predefined icons here: http://standards.freedesktop.org/icon-naming-spec/icon-naming-spec-latest.html
	// Optional.
	AppIcon string
	Summary string
	Body    string
	// Actions are sent over as a flat list of key, label pairs.
	Actions []Action
	Hints   map[string]dbus.Variant
	// ExpireTimeout is truncated to milliseconds on the wire.
	// See ExpireTimeoutNever and ExpireTimeoutSetByNotificationServer.
	ExpireTimeout time.Duration
}

// AddHint stores h, replacing any hint with the same ID.
func (n *Notification) AddHint(h Hint) {
	if n.Hints == nil {
		n.Hints = map[string]dbus.Variant{}
	}
	n.Hints[h.ID] = h.Variant
}

// SetUrgency sets the urgency hint.
func (n *Notification) SetUrgency(u Urgency) {
	n.AddHint(HintUrgency(u))
}

func (n Notification) flatActions() []string {
	out := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}

func (n Notification) wireHints() map[string]dbus.Variant {
	if n.Hints == nil {
		return map[string]dbus.Variant{}
	}
	return n.Hints
}

// SendNotification is provided for convenience.
// Use if you only want to deliver a notification and dont care about events.
//
// Implements dbus call:
//
//	UINT32 org.freedesktop.Notifications.Notify (
//	    STRING app_name,
//	    UINT32 replaces_id,
//	    STRING app_icon,
//	    STRING summary,
//	    STRING body,
//	    ARRAY  actions,
//	    DICT   hints,
//	    INT32  expire_timeout
//	);
//
// If replaces_id is 0, the return value is a UINT32 that represent the
// notification. The returned ID is always greater than zero.
// If replaces_id is not 0, the returned value is normally the same value as
// replaces_id.
func SendNotification(ctx context.Context, tr Transport, bus string, note Notification) (uint32, error) {
	body, err := tr.Call(ctx, bus, callNotify,
		note.AppName,
		note.ReplacesID,
		note.AppIcon,
		note.Summary,
		note.Body,
		note.flatActions(),
		note.wireHints(),
		int32(note.ExpireTimeout.Milliseconds()))
	if err != nil {
		return 0, err
	}
	var ret uint32
	if err := dbus.Store(body, &ret); err != nil {
		return 0, protocolError(err)
	}
	return ret, nil
}

// ServerInformation is a holder for information returned by
// GetServerInformation call.
type ServerInformation struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// GetServerInformation returns the information on the server.
//
// org.freedesktop.Notifications.GetServerInformation
//
//	GetServerInformation Return Values
//
//		Name		 Type	  Description
//		name		 STRING	  The product name of the server.
//		vendor		 STRING	  The vendor name. For example, "KDE," "GNOME," "freedesktop.org," or "Microsoft."
//		version		 STRING	  The server's version number.
//		spec_version STRING	  The specification version the server is compliant with.
func GetServerInformation(ctx context.Context, tr Transport, bus string) (ServerInformation, error) {
	body, err := tr.Call(ctx, bus, callGetServerInformation)
	if err != nil {
		return ServerInformation{}, err
	}
	ret := ServerInformation{}
	if err := dbus.Store(body, &ret.Name, &ret.Vendor, &ret.Version, &ret.SpecVersion); err != nil {
		return ServerInformation{}, protocolError(err)
	}
	return ret, nil
}

// GetCapabilities gets the capabilities of the notification server.
// This call takes no parameters.
// It returns an array of strings. Each string describes an optional capability implemented by the server.
//
// See also: https://developer.gnome.org/notification-spec/
func GetCapabilities(ctx context.Context, tr Transport, bus string) ([]string, error) {
	body, err := tr.Call(ctx, bus, callGetCapabilities)
	if err != nil {
		return []string{}, err
	}
	var ret []string
	if err := dbus.Store(body, &ret); err != nil {
		return []string{}, protocolError(err)
	}
	return ret, nil
}

// CloseNotification causes a notification to be forcefully closed and removed from the user's view.
// It can be used, for example, in the event that what the notification pertains to is no longer relevant,
// or to cancel a notification with no expiration time.
//
// The NotificationClosed (dbus) signal is emitted by this method.
// If the notification no longer exists, an empty D-BUS Error message is sent back.
func CloseNotification(ctx context.Context, tr Transport, bus string, id uint32) error {
	_, err := tr.Call(ctx, bus, callCloseNotification, id)
	return err
}

// StopServer asks the notification service to stop. This is not part of
// the freedesktop interface; servers from this module implement it.
func StopServer(ctx context.Context, tr Transport, bus string) (bool, error) {
	body, err := tr.Call(ctx, bus, callStop)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := dbus.Store(body, &ok); err != nil {
		return false, protocolError(err)
	}
	return ok, nil
}
