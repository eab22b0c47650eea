package notify

import (
	"context"
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

var errSubscriptionClosed = errors.New("signal subscription closed")

// WaitForAction consumes sub until a signal for notification id arrives,
// calls handler once with the decoded response and returns.
//
// Signals for other ids, other senders and other members are discarded.
// sub must have been created before the notification was sent, or signals
// emitted in between are lost.
func WaitForAction(ctx context.Context, sub Subscription, id uint32, handler func(ActionResponse)) error {
	return waitForAction(ctx, sub, id, handler, zerolog.Nop())
}

func waitForAction(ctx context.Context, sub Subscription, id uint32, handler func(ActionResponse), log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-sub.Signals():
			if !ok {
				return transportError(errSubscriptionClosed)
			}
			if sig == nil || sig.Path != ObjectPath {
				continue
			}
			if sender := sub.Sender(); sender != "" && sig.Sender != sender {
				continue
			}
			got, resp, err := decodeSignal(sig)
			if err != nil {
				log.Warn().Err(err).Str("signal", sig.Name).Msg("dropping malformed signal")
				continue
			}
			if resp.Kind == 0 {
				log.Debug().Str("signal", sig.Name).Msg("ignoring unknown signal")
				continue
			}
			if got != id {
				continue
			}
			handler(resp)
			return nil
		}
	}
}

// decodeSignal translates a notification signal. Unknown members yield a
// zero ActionResponse and no error.
func decodeSignal(sig *dbus.Signal) (uint32, ActionResponse, error) {
	var id uint32
	switch sig.Name {
	case SignalActionInvoked:
		var key string
		if err := dbus.Store(sig.Body, &id, &key); err != nil {
			return 0, ActionResponse{}, protocolError(err)
		}
		return id, CustomAction(key), nil
	case SignalNotificationClosed:
		var code uint32
		if err := dbus.Store(sig.Body, &id, &code); err != nil {
			return 0, ActionResponse{}, protocolError(err)
		}
		return id, Closed(ReasonFromCode(code)), nil
	}
	return 0, ActionResponse{}, nil
}
