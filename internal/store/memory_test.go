package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mapler/socialclock/internal/domain/event"
)

// newTestEvent builds a started event with the provided id and start time.
func newTestEvent(id string, startAt time.Time) *event.AlarmEvent {
	return &event.AlarmEvent{
		EventID:  id,
		UserID:   "u-1",
		UserName: "mapler",
		StartAt:  startAt,
	}
}

// TestMemory_InsertGetRoundtrip ensures insert followed by get yields an
// equal record in all fields.
func TestMemory_InsertGetRoundtrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	end := time.Date(2024, 3, 1, 7, 50, 0, 0, time.UTC)
	want := newTestEvent("e1", end.Add(-20*time.Minute))
	want.EndAt = &end
	want.SnoozeTimes = 2

	require.NoError(t, m.Insert(ctx, want))

	got, err := m.GetByEventID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.NotSame(t, want, got)
}

// TestMemory_InsertDuplicate verifies a colliding event id fails with
// ErrDuplicateKey and leaves the original record unmodified.
func TestMemory_InsertDuplicate(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	original := newTestEvent("e1", time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC))
	require.NoError(t, m.Insert(ctx, original))

	intruder := newTestEvent("e1", time.Now())
	intruder.UserName = "intruder"
	require.ErrorIs(t, m.Insert(ctx, intruder), ErrDuplicateKey)

	got, err := m.GetByEventID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, original, got)
}

// TestMemory_GetMissing verifies the not-found contract.
func TestMemory_GetMissing(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	_, err := m.GetByEventID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestMemory_FindAllOrdersByStartAtDesc checks the history ordering contract.
func TestMemory_FindAllOrdersByStartAtDesc(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	require.NoError(t, m.Insert(ctx, newTestEvent("old", base)))
	require.NoError(t, m.Insert(ctx, newTestEvent("newest", base.Add(48*time.Hour))))
	require.NoError(t, m.Insert(ctx, newTestEvent("middle", base.Add(24*time.Hour))))

	events, err := m.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "newest", events[0].EventID)
	require.Equal(t, "middle", events[1].EventID)
	require.Equal(t, "old", events[2].EventID)
}

// TestMemory_FilterByEventID verifies the id-equality filter returns exactly
// the matching record or an empty sequence.
func TestMemory_FilterByEventID(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, newTestEvent("e1", time.Now())))
	require.NoError(t, m.Insert(ctx, newTestEvent("e2", time.Now())))

	events, err := m.FilterBy(ctx, EventIDEquals("e1"), Order{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "e1", events[0].EventID)

	events, err = m.FilterBy(ctx, EventIDEquals("absent"), Order{})
	require.NoError(t, err)
	require.Empty(t, events)
}

// TestMemory_FilterFinished exercises null checks and MatchAny combination.
func TestMemory_FilterFinished(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	finished := newTestEvent("done", time.Now().Add(-time.Hour))
	end := time.Now()
	finished.EndAt = &end
	require.NoError(t, m.Insert(ctx, finished))
	require.NoError(t, m.Insert(ctx, newTestEvent("ringing", time.Now())))

	events, err := m.FilterBy(ctx, Filter{
		Conditions: []Condition{{Field: FieldEndAt, Op: OpNotNull}},
	}, Order{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "done", events[0].EventID)

	events, err = m.FilterBy(ctx, Filter{
		Mode: MatchAny,
		Conditions: []Condition{
			{Field: FieldEventID, Op: OpEq, Value: "ringing"},
			{Field: FieldEndAt, Op: OpNotNull},
		},
	}, Order{})
	require.NoError(t, err)
	require.Len(t, events, 2)
}

// TestMemory_UpdateLeavesIdentityUntouched ensures update only rewrites the
// mutable fields and reports affected rows.
func TestMemory_UpdateLeavesIdentityUntouched(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	require.NoError(t, m.Insert(ctx, newTestEvent("e1", start)))

	end := start.Add(30 * time.Minute)
	mutated := &event.AlarmEvent{
		EventID:     "e1",
		UserID:      "someone-else",
		UserName:    "someone-else",
		StartAt:     start.Add(time.Hour),
		EndAt:       &end,
		SnoozeTimes: 3,
	}

	affected, err := m.Update(ctx, mutated)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	got, err := m.GetByEventID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "u-1", got.UserID)
	require.Equal(t, "mapler", got.UserName)
	require.Equal(t, start, got.StartAt)
	require.Equal(t, 3, got.SnoozeTimes)
	require.Equal(t, end, *got.EndAt)

	affected, err = m.Update(ctx, newTestEvent("absent", start))
	require.NoError(t, err)
	require.Zero(t, affected)
}

// TestMemory_Delete verifies hard delete semantics and affected-row counts.
func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, newTestEvent("e1", time.Now())))

	affected, err := m.Delete(ctx, "e1")
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	_, err = m.GetByEventID(ctx, "e1")
	require.ErrorIs(t, err, ErrNotFound)

	affected, err = m.Delete(ctx, "e1")
	require.NoError(t, err)
	require.Zero(t, affected)
}
