package notify

import (
	"context"
	"sync"
)

// Handle follows one shown notification. It is created by Client.Show.
//
// Close, CloseContext, OnClose and Release end the handle's life; a
// WaitForAction that receives the closed response does too. Update keeps
// the handle and may change its ID.
type Handle struct {
	mu       sync.Mutex
	id       uint32
	client   *Client
	note     Notification
	sub      Subscription
	consumed bool
}

// ID returns the id the server assigned.
func (h *Handle) ID() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.id
}

// Notification returns a copy of the content last sent.
func (h *Handle) Notification() Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.note
}

// Modify edits the stored content. The change is shown after Update.
func (h *Handle) Modify(edit func(n *Notification)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	edit(&h.note)
}

// Update re-sends the stored content replacing the current notification.
// The handle takes the id the server returns.
func (h *Handle) Update(ctx context.Context) error {
	h.mu.Lock()
	if h.consumed {
		h.mu.Unlock()
		return ErrHandleConsumed
	}
	note := h.note
	note.ReplacesID = h.id
	h.mu.Unlock()

	id, err := SendNotification(ctx, h.client.tr, h.client.bus, note)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.id = id
	h.mu.Unlock()
	return nil
}

// Close asks the server to close the notification. Failures are not
// reported, use CloseContext to observe them.
func (h *Handle) Close() {
	if err := h.CloseContext(context.Background()); err != nil {
		h.client.log.Debug().Err(err).Msg("close notification")
	}
}

// CloseContext asks the server to close the notification and returns the
// call error, if any. The handle is consumed either way.
func (h *Handle) CloseContext(ctx context.Context) error {
	id, ok := h.consume()
	if !ok {
		return ErrHandleConsumed
	}
	err := CloseNotification(ctx, h.client.tr, h.client.bus, id)
	if cerr := h.sub.Close(); cerr != nil {
		h.client.log.Debug().Err(cerr).Msg("release subscription")
	}
	return err
}

// WaitForAction blocks until the next signal for this notification and
// passes it to handler. Persistent notifications may be waited on again
// after an action; the closed response consumes the handle.
func (h *Handle) WaitForAction(ctx context.Context, handler func(ActionResponse)) error {
	h.mu.Lock()
	if h.consumed {
		h.mu.Unlock()
		return ErrHandleConsumed
	}
	id := h.id
	h.mu.Unlock()

	var closed bool
	err := waitForAction(ctx, h.sub, id, func(resp ActionResponse) {
		closed = resp.IsClosed()
		handler(resp)
	}, h.client.log)
	if err != nil {
		return err
	}
	if closed {
		return h.Release()
	}
	return nil
}

// OnClose blocks until the notification is closed and calls handler with
// the reason. Invoked actions are skipped. The handle is consumed.
func (h *Handle) OnClose(ctx context.Context, handler func(Reason)) error {
	h.mu.Lock()
	if h.consumed {
		h.mu.Unlock()
		return ErrHandleConsumed
	}
	id := h.id
	h.mu.Unlock()
	defer h.Release()

	for {
		var resp ActionResponse
		err := waitForAction(ctx, h.sub, id, func(r ActionResponse) {
			resp = r
		}, h.client.log)
		if err != nil {
			return err
		}
		if resp.IsClosed() {
			handler(resp.Reason)
			return nil
		}
	}
}

// Release stops signal delivery for the handle without closing the
// notification.
func (h *Handle) Release() error {
	h.consume()
	return h.sub.Close()
}

func (h *Handle) consume() (uint32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.consumed {
		return h.id, false
	}
	h.consumed = true
	return h.id, true
}
