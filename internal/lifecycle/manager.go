package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mapler/socialclock/internal/domain/event"
	"github.com/mapler/socialclock/internal/logger"
	"github.com/mapler/socialclock/internal/store"
)

// ErrAlreadyStarted is returned when an alarm event is started twice.
var ErrAlreadyStarted = errors.New("alarm event already started")

// Manager enforces the alarm-event state machine. All event mutation passes
// through here; the store holds no business rules.
type Manager struct {
	store store.Store

	// mu guards the per-event lock table.
	mu sync.Mutex
	// locks serializes mutations per event id. The OS can deliver a normal
	// firing and a snooze firing close together for the same event, so the
	// single-writer-per-id precondition is enforced rather than assumed.
	locks map[string]*sync.Mutex

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewManager creates a lifecycle manager on top of the provided store.
func NewManager(s store.Store) *Manager {
	return &Manager{
		store: s,
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

// InitAlarmEvent generates a fresh unique event identifier. No store record
// is created yet: the id must exist before the alarm is scheduled, but the
// record should only exist once the user has actually been alerted.
func (m *Manager) InitAlarmEvent() string {
	return uuid.NewString()
}

// StartAlarmEvent creates the store record in the started state.
// Starting the same event id twice fails with ErrAlreadyStarted.
func (m *Manager) StartAlarmEvent(
	ctx context.Context,
	eventID, userID, userName string,
	startAt time.Time,
) (*event.AlarmEvent, error) {
	unlock := m.lockEvent(eventID)
	defer unlock()

	e := &event.AlarmEvent{
		EventID:  eventID,
		UserID:   userID,
		UserName: userName,
		StartAt:  startAt,
	}

	err := m.store.Insert(ctx, e)
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyStarted, eventID)
	}

	if err != nil {
		return nil, fmt.Errorf("start alarm event: %w", err)
	}

	logger.InfoKV(ctx, "Alarm event started", "event_id", eventID, "user_id", userID)

	return e, nil
}

// GetAlarmEventByID returns the event or nil when no record exists.
func (m *Manager) GetAlarmEventByID(ctx context.Context, eventID string) (*event.AlarmEvent, error) {
	e, err := m.store.GetByEventID(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get alarm event: %w", err)
	}

	return e, nil
}

// SnoozeAlarmEvent increments the snooze counter of a started event.
// A missing or already finished event is tolerated silently: the triggering
// OS alarm firing is inherently racy with user cancellation.
func (m *Manager) SnoozeAlarmEvent(ctx context.Context, eventID string) error {
	unlock := m.lockEvent(eventID)
	defer unlock()

	e, err := m.GetAlarmEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if e == nil || e.IsFinished() {
		logger.DebugKV(ctx, "Snooze ignored", "event_id", eventID)

		return nil
	}

	e.SnoozeTimes++

	if _, err := m.store.Update(ctx, e); err != nil {
		return fmt.Errorf("snooze alarm event: %w", err)
	}

	logger.InfoKV(ctx, "Alarm event snoozed", "event_id", eventID, "snooze_times", e.SnoozeTimes)

	return nil
}

// FinishAlarmEvent marks the event as finished at the current time.
// A missing event is a no-op; re-finishing keeps the first end time.
func (m *Manager) FinishAlarmEvent(ctx context.Context, eventID string) error {
	unlock := m.lockEvent(eventID)
	defer unlock()

	e, err := m.GetAlarmEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if e == nil || e.IsFinished() {
		logger.DebugKV(ctx, "Finish ignored", "event_id", eventID)

		return nil
	}

	endAt := m.now()
	e.EndAt = &endAt

	if _, err := m.store.Update(ctx, e); err != nil {
		return fmt.Errorf("finish alarm event: %w", err)
	}

	logger.InfoKV(ctx, "Alarm event finished", "event_id", eventID, "end_at", endAt)

	return nil
}

// GetAllAlarmEvents returns every event, newest wake-up first.
func (m *Manager) GetAllAlarmEvents(ctx context.Context) ([]*event.AlarmEvent, error) {
	events, err := m.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alarm events: %w", err)
	}

	return events, nil
}

// FinishedAlarmEvents returns only finished events, newest wake-up first.
// This backs the wake-up history view.
func (m *Manager) FinishedAlarmEvents(ctx context.Context) ([]*event.AlarmEvent, error) {
	events, err := m.store.FilterBy(ctx, store.Filter{
		Conditions: []store.Condition{{Field: store.FieldEndAt, Op: store.OpNotNull}},
	}, store.ByStartAtDesc)
	if err != nil {
		return nil, fmt.Errorf("list finished alarm events: %w", err)
	}

	return events, nil
}

// lockEvent acquires the per-id mutation lock and returns its release func.
func (m *Manager) lockEvent(eventID string) func() {
	m.mu.Lock()

	lock, ok := m.locks[eventID]
	if !ok {
		lock = new(sync.Mutex)
		m.locks[eventID] = lock
	}

	m.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}
