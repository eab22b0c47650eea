package server

import (
	"math"
	"time"
)

const (
	// DefaultTimeout applies to notifications that leave the expiry to the server.
	DefaultTimeout = 5 * time.Second
	// MinimumTimeout is the shortest expiry the server honours.
	MinimumTimeout = 10 * time.Millisecond
)

// EffectiveWait maps a requested expire_timeout in milliseconds to how long
// a notification stays open. ok is false when it never expires.
//
//	requested == 0          never
//	requested < 0           defaultWait
//	0 < requested < minimum minimum
//	otherwise               requested
func EffectiveWait(requested int64, defaultWait, minimum time.Duration) (wait time.Duration, ok bool) {
	switch {
	case requested == 0:
		return 0, false
	case requested < 0:
		return defaultWait, true
	}
	if requested > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64), true
	}
	d := time.Duration(requested) * time.Millisecond
	if d < minimum {
		return minimum, true
	}
	return d, true
}

func belowMinimum(requested int64, minimum time.Duration) bool {
	if requested <= 0 || requested > math.MaxInt64/int64(time.Millisecond) {
		return false
	}
	return time.Duration(requested)*time.Millisecond < minimum
}
