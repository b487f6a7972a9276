package checker

import (
	"time"

	"ticketwatch-backend/internal/calendar"
)

// Status is the classified availability of the monitored page.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSoldOut   Status = "sold_out"
	// StatusUnknown covers pages where neither keyword set matches,
	// e.g. a render failure page or a site redesign. It never triggers
	// a notification on its own.
	StatusUnknown Status = "unknown"
)

// State is the record persisted between runs. It is owned exclusively by
// this process: read once at the start of a run, written at most once at
// the end.
type State struct {
	LastStatus    Status
	LastCheckedAt time.Time
	// zero when no notification has ever been sent
	LastNotifiedAt time.Time
	// calendar-feed date keys (YYYYMMDD) that were open on the last run,
	// kept so only newly opened dates trigger a mail
	OpenDates []string
}

// DefaultState stands in for an absent or unreadable record. The last
// status defaults to sold_out so a first run against an already-available
// page still notifies.
func DefaultState() State {
	return State{LastStatus: StatusSoldOut}
}

// Result is produced by every run and only survives it through the
// history table and whatever it contributes to State.
type Result struct {
	Status    Status
	FetchedAt time.Time
	// leading slice of the rendered text, kept for diagnostics
	TextSample string
	OpenDates  []calendar.OpenDate
}

// Decision is the output of the transition detector.
type Decision struct {
	ShouldNotify bool
	NewState     State
}

// Notification is what the mail transport receives when a decision fires.
type Notification struct {
	URL        string
	DetectedAt time.Time
	// dates newly open since the previous run, empty in page mode
	OpenDates []calendar.OpenDate
	// Test marks a force-notify mail sent while nothing is available
	Test bool
}
