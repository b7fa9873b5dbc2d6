package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mapler/socialclock/internal/domain/event"
)

// Memory is an in-memory Store used as the default backend and in tests.
// A single long-lived instance replaces the per-call open/close discipline
// of the original adapter; the mutex scopes each logical operation.
type Memory struct {
	mu sync.RWMutex
	// events maps event id to the stored record.
	events map[string]*event.AlarmEvent
	// order preserves insertion order for unordered queries.
	order []string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events: make(map[string]*event.AlarmEvent),
	}
}

// FindAll returns every event ordered by start time, newest first.
func (m *Memory) FindAll(ctx context.Context) ([]*event.AlarmEvent, error) {
	return m.FilterBy(ctx, Filter{}, ByStartAtDesc)
}

// FilterBy returns events matching the filter in the requested order.
func (m *Memory) FilterBy(_ context.Context, filter Filter, order Order) ([]*event.AlarmEvent, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*event.AlarmEvent, 0, len(m.order))

	for _, id := range m.order {
		if e := m.events[id]; filter.Matches(e) {
			results = append(results, e.Clone())
		}
	}

	sortEvents(results, order)

	return results, nil
}

// GetByEventID returns the event with the provided id or ErrNotFound.
func (m *Memory) GetByEventID(_ context.Context, eventID string) (*event.AlarmEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}

	return e.Clone(), nil
}

// Insert stores a new event. A colliding event id yields ErrDuplicateKey.
func (m *Memory) Insert(_ context.Context, e *event.AlarmEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.events[e.EventID]; exists {
		return ErrDuplicateKey
	}

	m.events[e.EventID] = e.Clone()
	m.order = append(m.order, e.EventID)

	return nil
}

// Update rewrites the mutable fields of the matching record.
func (m *Memory) Update(_ context.Context, e *event.AlarmEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.events[e.EventID]
	if !ok {
		return 0, nil
	}

	// Identity fields and start_at stay untouched.
	incoming := e.Clone()
	updated := current.Clone()
	updated.EndAt = incoming.EndAt
	updated.SnoozeTimes = incoming.SnoozeTimes
	updated.SyncAt = incoming.SyncAt
	updated.DeletedAt = incoming.DeletedAt
	m.events[e.EventID] = updated

	return 1, nil
}

// Delete removes the record. A missing id affects zero rows.
func (m *Memory) Delete(_ context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return 0, nil
	}

	delete(m.events, eventID)

	for i, id := range m.order {
		if id == eventID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return 1, nil
}

// sortEvents orders the result set in place. An empty order keeps insertion order.
func sortEvents(events []*event.AlarmEvent, order Order) {
	if order.Field == "" {
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		if order.Descending {
			return eventLess(events[j], events[i], order.Field)
		}

		return eventLess(events[i], events[j], order.Field)
	})
}

// eventLess compares two events on the named field, absent timestamps first.
func eventLess(a, b *event.AlarmEvent, field string) bool {
	switch queryFields[field] {
	case kindText:
		return textField(field, a) < textField(field, b)
	case kindInt:
		return a.SnoozeTimes < b.SnoozeTimes
	case kindTime:
		at, aok := timeField(field, a)
		bt, bok := timeField(field, b)

		if !aok || !bok {
			return !aok && bok
		}

		return at.Before(bt)
	}

	return false
}
