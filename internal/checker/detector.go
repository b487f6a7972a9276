package checker

import "time"

// Detect applies the notify-on-transition rule: a mail fires when the
// page turned available and the previous run did not see it available,
// or when the operator forces one. The new state always records the
// current status, including unknown, so a later recovery is detected as
// a fresh transition instead of being swallowed.
func Detect(current Status, prior State, forceNotify bool, now time.Time) Decision {
	shouldNotify := forceNotify ||
		(current == StatusAvailable && prior.LastStatus != StatusAvailable)

	newState := State{
		LastStatus:     current,
		LastCheckedAt:  now,
		LastNotifiedAt: prior.LastNotifiedAt,
		OpenDates:      prior.OpenDates,
	}
	if shouldNotify {
		newState.LastNotifiedAt = now
	}

	return Decision{
		ShouldNotify: shouldNotify,
		NewState:     newState,
	}
}
