package notify

import "strconv"

// Reason for the closed notification.
//
// The freedesktop protocol defines codes 1 to 4. Any other code is
// implementation specific and is carried through unchanged.
type Reason uint32

const (
	// ReasonExpired when a notification expired
	ReasonExpired Reason = 1

	// ReasonDismissedByUser when a notification has been dismissed by a user
	ReasonDismissedByUser Reason = 2

	// ReasonClosedByCall when a notification has been closed by a call to CloseNotification
	ReasonClosedByCall Reason = 3

	// ReasonUnknown when as notification has been closed for an unknown reason
	ReasonUnknown Reason = 4
)

// ReasonFromCode maps a NotificationClosed reason code to a Reason.
// Codes outside 1..3 are Other codes and keep their value.
func ReasonFromCode(code uint32) Reason {
	return Reason(code)
}

// Code returns the wire value of r.
func (r Reason) Code() uint32 {
	return uint32(r)
}

// IsOther reports whether r is not one of Expired, DismissedByUser or
// ClosedByCall.
func (r Reason) IsOther() bool {
	switch r {
	case ReasonExpired, ReasonDismissedByUser, ReasonClosedByCall:
		return false
	}
	return true
}

func (r Reason) String() string {
	switch r {
	case ReasonExpired:
		return "Expired"
	case ReasonDismissedByUser:
		return "DismissedByUser"
	case ReasonClosedByCall:
		return "ClosedByCall"
	case ReasonUnknown:
		return "Unknown"
	default:
		return "Other(" + strconv.FormatUint(uint64(r), 10) + ")"
	}
}

// ResponseKind tells which variant an ActionResponse holds.
type ResponseKind uint8

const (
	// ResponseAction is delivered for an ActionInvoked signal.
	ResponseAction ResponseKind = iota + 1
	// ResponseClosed is delivered for a NotificationClosed signal.
	ResponseClosed
)

// ActionResponse is what a waiter receives for its notification: either
// the key of an invoked action or the reason it was closed.
type ActionResponse struct {
	Kind ResponseKind
	// ActionKey is set when Kind is ResponseAction.
	ActionKey string
	// Reason is set when Kind is ResponseClosed.
	Reason Reason
}

// CustomAction builds the ResponseAction variant.
func CustomAction(key string) ActionResponse {
	return ActionResponse{Kind: ResponseAction, ActionKey: key}
}

// Closed builds the ResponseClosed variant.
func Closed(reason Reason) ActionResponse {
	return ActionResponse{Kind: ResponseClosed, Reason: reason}
}

// IsClosed reports whether the response is the closed variant.
func (r ActionResponse) IsClosed() bool {
	return r.Kind == ResponseClosed
}

func (r ActionResponse) String() string {
	if r.IsClosed() {
		return "Closed(" + r.Reason.String() + ")"
	}
	return "Action(" + r.ActionKey + ")"
}

// NotificationClosedSignal holds data for *Closed callbacks from Notifications Interface.
type NotificationClosedSignal struct {
	ID     uint32
	Reason Reason
}

// ActionInvokedSignal holds callback data from any Actions passed to Notification
type ActionInvokedSignal struct {
	ID        uint32
	ActionKey string
}
