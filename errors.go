package notify

import "errors"

var (
	// ErrTransport is returned when the bus is unreachable or a call failed.
	ErrTransport = errors.New("notify: bus transport failure")

	// ErrInvalidBusName is returned when a custom bus path does not resolve
	// to a legal bus name.
	ErrInvalidBusName = errors.New("notify: invalid bus name")

	// ErrProtocolMismatch is returned when a reply or signal body does not
	// have the expected shape.
	ErrProtocolMismatch = errors.New("notify: unexpected message shape")

	// ErrHandleConsumed is returned when a Handle is used after Close,
	// OnClose or a closed ActionResponse ended its lifetime.
	ErrHandleConsumed = errors.New("notify: handle already consumed")
)

func transportError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrTransport, err)
}

func protocolError(err error) error {
	return errors.Join(ErrProtocolMismatch, err)
}
