package notify

import "github.com/godbus/dbus/v5"

// Hint is a single entry of the hints dictionary.
type Hint struct {
	ID      string
	Variant dbus.Variant
}

// Urgency is the value of the "urgency" hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "Low"
	case UrgencyNormal:
		return "Normal"
	case UrgencyCritical:
		return "Critical"
	}
	return "Unknown"
}

const (
	HintKeyUrgency   = "urgency"
	HintKeyResident  = "resident"
	HintKeyTransient = "transient"
	HintKeyCategory  = "category"
	HintKeySoundName = "sound-name"
	HintKeyImagePath = "image-path"
)

// HintUrgency is sent as a BYTE.
func HintUrgency(u Urgency) Hint {
	return Hint{ID: HintKeyUrgency, Variant: dbus.MakeVariant(byte(u))}
}

// HintResident keeps the notification open after an action is invoked.
// It stays until it is explicitly closed or it expires.
func HintResident(resident bool) Hint {
	return Hint{ID: HintKeyResident, Variant: dbus.MakeVariant(resident)}
}

// HintTransient asks the server to bypass any persistence.
func HintTransient(transient bool) Hint {
	return Hint{ID: HintKeyTransient, Variant: dbus.MakeVariant(transient)}
}

// HintCategory sets the type of notification, e.g. "email.arrived".
func HintCategory(category string) Hint {
	return Hint{ID: HintKeyCategory, Variant: dbus.MakeVariant(category)}
}

// HintSoundWithName plays a themed sound, e.g. "message-new-instant".
func HintSoundWithName(name string) Hint {
	return Hint{ID: HintKeySoundName, Variant: dbus.MakeVariant(name)}
}

// HintImageFilePath points at an image file, it should be an absolute path.
func HintImageFilePath(path string) Hint {
	return Hint{ID: HintKeyImagePath, Variant: dbus.MakeVariant(path)}
}
