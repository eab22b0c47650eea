package server

import (
	"context"

	notify "github.com/esiqveland/notifyd"
)

// Handler presents notifications. HandleNotification runs in its own
// goroutine for every accepted notification and should return when the
// user is done with it: a true ok picks the close reason, a false ok means
// the notification was dismissed.
//
// ctx is cancelled once the session closed for another reason; the result
// of a handler returning after that is discarded.
// Actions the user invokes are sent through ctl.
type Handler interface {
	HandleNotification(ctx context.Context, n Notification, ctl Controls) (reason notify.Reason, ok bool)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, n Notification, ctl Controls) (notify.Reason, bool)

func (f HandlerFunc) HandleNotification(ctx context.Context, n Notification, ctl Controls) (notify.Reason, bool) {
	return f(ctx, n, ctl)
}

type handlerResult struct {
	reason notify.Reason
	ok     bool
}

// invoke starts h and returns the channel its result arrives on.
// A nil Handler yields a nil channel, which never becomes ready.
func invoke(ctx context.Context, h Handler, n Notification, ctl Controls) <-chan handlerResult {
	if h == nil {
		return nil
	}
	out := make(chan handlerResult, 1)
	go func() {
		reason, ok := h.HandleNotification(ctx, n, ctl)
		out <- handlerResult{reason: reason, ok: ok}
	}()
	return out
}
