package server

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

var (
	// ErrChannelAbandoned is logged when every producer of a session
	// endpoint was released without sending. The session closes as
	// dismissed.
	ErrChannelAbandoned = errors.New("server: endpoint abandoned by all producers")

	// ErrStopped is returned for Notify calls after Stop.
	ErrStopped = errors.New("server: stopped")

	// ErrNameTaken is returned by Listen when another process owns the bus name.
	ErrNameTaken = errors.New("server: bus name already taken")

	// ErrUnknownNotification is returned when an id has no open session.
	ErrUnknownNotification = errors.New("server: no open notification with this id")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("server: invalid configuration")
)

func dbusError(err error) *dbus.Error {
	return dbus.MakeFailedError(err)
}
