package event

import (
	"fmt"
	"time"
)

// AlarmEvent is one record of a single day's wake-up-to-finish cycle.
type AlarmEvent struct {
	// EventID is the opaque unique identifier, generated at creation and immutable.
	EventID string
	// UserID identifies the social account active when the event started.
	UserID string
	// UserName is the display name snapshot taken when the event started.
	UserName string
	// StartAt is when the alarm began ringing. Set once, never changed.
	StartAt time.Time
	// EndAt is when the user got up. Nil until finished; never cleared once set.
	EndAt *time.Time
	// SnoozeTimes counts snooze transitions. Only increases while EndAt is nil.
	SnoozeTimes int
	// SyncAt is reserved for remote-sync bookkeeping.
	SyncAt *time.Time
	// DeletedAt is a soft-delete marker reserved for sync bookkeeping.
	DeletedAt *time.Time
}

// IsFinished reports whether the event reached its terminal state.
func (e *AlarmEvent) IsFinished() bool {
	return e != nil && e.EndAt != nil
}

// Clone returns a deep copy of the event to avoid leaking internal references.
func (e *AlarmEvent) Clone() *AlarmEvent {
	if e == nil {
		return nil
	}

	cloned := *e
	cloned.EndAt = cloneTime(e.EndAt)
	cloned.SyncAt = cloneTime(e.SyncAt)
	cloned.DeletedAt = cloneTime(e.DeletedAt)

	return &cloned
}

// Summary renders a human-readable wake-up summary for history views and
// social posts.
func (e *AlarmEvent) Summary() string {
	if e == nil {
		return ""
	}

	name := e.UserName
	if name == "" {
		name = e.UserID
	}

	if !e.IsFinished() {
		return fmt.Sprintf("%s is still asleep since %s", name, e.StartAt.Format(time.Kitchen))
	}

	return fmt.Sprintf(
		"%s got up at %s after snoozing %d time(s)",
		name,
		e.EndAt.Format(time.Kitchen),
		e.SnoozeTimes,
	)
}

// cloneTime copies an optional timestamp.
func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	cloned := *t

	return &cloned
}
