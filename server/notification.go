package server

import (
	"github.com/godbus/dbus/v5"

	notify "github.com/esiqveland/notifyd"
)

// Hints are the hints the server interprets. Everything else is kept in
// Custom.
type Hints struct {
	Category  string
	Resident  bool // keep the notification open after an action is invoked
	Transient bool
	Urgency   notify.Urgency
	Custom    map[string]dbus.Variant
}

// Notification is the snapshot of one accepted Notify call.
type Notification struct {
	ID      uint32
	AppName string
	AppIcon string
	Summary string
	Body    string
	Actions []notify.Action
	Hints   Hints
	// ExpireTimeout is the requested expire_timeout in milliseconds.
	ExpireTimeout int32
	// Persistent is set when the notification stays open after an action.
	Persistent bool
}

// parseActions pairs up a flat (key, label, key, label...) list.
// An unpaired trailing entry is dropped.
func parseActions(flat []string) []notify.Action {
	out := make([]notify.Action, len(flat)/2)
	for i := range out {
		out[i] = notify.Action{
			Key:   flat[2*i],
			Label: flat[2*i+1],
		}
	}
	return out
}

func parseHints(raw map[string]dbus.Variant) Hints {
	hints := Hints{
		Urgency: notify.UrgencyNormal,
		Custom:  map[string]dbus.Variant{},
	}
	for key, value := range raw {
		switch key {
		case notify.HintKeyCategory:
			if category, ok := value.Value().(string); ok {
				hints.Category = category
			}
		case notify.HintKeyResident:
			if resident, ok := value.Value().(bool); ok {
				hints.Resident = resident
			}
		case notify.HintKeyTransient:
			if transient, ok := value.Value().(bool); ok {
				hints.Transient = transient
			}
		case notify.HintKeyUrgency:
			urgency, ok := value.Value().(byte)
			if ok && notify.Urgency(urgency) <= notify.UrgencyCritical {
				hints.Urgency = notify.Urgency(urgency)
			}
		default:
			hints.Custom[key] = value
		}
	}
	return hints
}
