/*
Package server implements the service side of org.freedesktop.Notifications.

Every accepted Notify call opens a Session: an actor that owns the
notification until it emits exactly one NotificationClosed signal. The
session races the user's actions, explicit close requests, the Handler's
completion and the expiry timer:

	action invoked      ActionInvoked, then ClosedByCall unless persistent
	close requested     the requested reason
	handler returned    its reason, or DismissedByUser
	timer fired         Expired

A notification is persistent when it carries resident=true or never
expires. Persistent notifications may see several actions before closing.

Server hosts a Service on the default bus name or a namespaced one and
leaves the bus a grace delay after Stop.
*/
package server
