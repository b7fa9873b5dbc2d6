package store

import (
	"context"
	"errors"

	"github.com/mapler/socialclock/internal/domain/event"
)

// Store defines persistence operations for alarm events. Implementations
// hold no business rules: lifecycle decisions stay in the manager layer.
type Store interface {
	// FindAll returns every event ordered by start time, newest first.
	FindAll(ctx context.Context) ([]*event.AlarmEvent, error)
	// FilterBy returns events matching the filter in the requested order.
	// An empty filter matches every record; an empty order keeps store order.
	FilterBy(ctx context.Context, filter Filter, order Order) ([]*event.AlarmEvent, error)
	// GetByEventID returns the event with the provided id or ErrNotFound.
	GetByEventID(ctx context.Context, eventID string) (*event.AlarmEvent, error)
	// Insert stores a new event. A colliding event id yields ErrDuplicateKey.
	Insert(ctx context.Context, e *event.AlarmEvent) error
	// Update rewrites the mutable fields (end_at, snooze_times, sync_at,
	// deleted_at) of the record matching the event id and returns the number
	// of rows affected (0 or 1). Identity fields and start_at stay untouched.
	Update(ctx context.Context, e *event.AlarmEvent) (int64, error)
	// Delete removes the record and returns the number of rows affected (0 or 1).
	Delete(ctx context.Context, eventID string) (int64, error)
}

var (
	// ErrNotFound is returned when no record matches the requested event id.
	ErrNotFound = errors.New("alarm event not found")
	// ErrDuplicateKey is returned when an insert collides with an existing event id.
	ErrDuplicateKey = errors.New("duplicate event id")
	// ErrStorageUnavailable is returned when the underlying storage cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrQuerySyntax is returned when a filter or order is malformed,
	// before the query reaches storage.
	ErrQuerySyntax = errors.New("malformed query")
)
