/*
The notify package is a client for the freedesktop dbus notification interface
built on godbus. The server subpackage implements the service side.
See: https://developer.gnome.org/notification-spec/ and
https://github.com/godbus/dbus

Each notification displayed is allocated a unique ID by the server. (see Notify)
This ID unique within the dbus session. While the notification server is running,
the ID will not be recycled unless the capacity of a uint32 is exceeded.

This can be used to hide the notification before the expiration timeout is reached. (see CloseNotification)

The ID can also be used to atomically replace the notification with another (Notification.ReplacesID).
This allows you to (for instance) modify the contents of a notification while it's on-screen.

Client.Show returns a Handle that follows a notification until it closes:

	h, err := client.Show(ctx, n)
	if err != nil {
		return err
	}
	err = h.OnClose(ctx, func(r notify.Reason) {
		log.Printf("closed: %v", r)
	})

A service can also be reached under a namespaced bus name, see ResolveBus
and WithCustomBus.
*/
package notify
