package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mapler/socialclock/internal/logger"
)

// Kind distinguishes the primary daily trigger from a snooze re-trigger.
type Kind string

const (
	// KindNormal is the primary daily wake-up trigger.
	KindNormal Kind = "normal"
	// KindSnooze is a snooze re-trigger of an active event.
	KindSnooze Kind = "snooze"
)

// FireFunc is invoked when an armed alarm fires.
type FireFunc func(ctx context.Context, eventID string, kind Kind)

// Scheduler arms alarms for the orchestrator.
type Scheduler interface {
	// SetAlarm arms an alarm for the event at the provided time.
	// Arming replaces any previously pending alarm.
	SetAlarm(ctx context.Context, eventID string, kind Kind, at time.Time) error
	// CancelAlarm disarms the pending alarm, if any. Best effort: it does
	// not roll back an alarm that already fired.
	CancelAlarm(ctx context.Context) error
}

// Timer is an in-process Scheduler backed by time.Timer. It replaces the
// OS alarm manager of the original application: one pending alarm at a
// time, re-arming replaces it.
type Timer struct {
	// fire is called on the timer goroutine when an alarm goes off.
	fire FireFunc

	// mu guards the pending timer slot.
	mu      sync.Mutex
	pending *time.Timer
	// generation invalidates stale timer callbacks after re-arming.
	generation uint64
}

// NewTimer creates a scheduler delivering firings to the provided callback.
func NewTimer(fire FireFunc) *Timer {
	return &Timer{fire: fire}
}

// SetAlarm arms the timer for the event, replacing any pending alarm.
func (t *Timer) SetAlarm(ctx context.Context, eventID string, kind Kind, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}

	t.generation++
	generation := t.generation

	t.pending = time.AfterFunc(time.Until(at), func() {
		t.mu.Lock()
		stale := generation != t.generation
		t.mu.Unlock()

		if stale {
			return
		}

		// The firing runs on the timer goroutine with a fresh background
		// context: the arming request's context is long gone by now.
		fireCtx := logger.WithName(context.Background(), "scheduler")
		logger.InfoKV(fireCtx, "Alarm fired", "event_id", eventID, "kind", kind)
		t.fire(fireCtx, eventID, kind)
	})

	logger.InfoKV(ctx, "Alarm armed", "event_id", eventID, "kind", kind, "at", at)

	return nil
}

// CancelAlarm disarms the pending alarm, if any.
func (t *Timer) CancelAlarm(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}

	t.generation++

	logger.Info(ctx, "Pending alarm canceled")

	return nil
}
