package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestIsFinished verifies the terminal-state predicate including nil safety.
func TestIsFinished(t *testing.T) {
	t.Parallel()

	require.False(t, (*AlarmEvent)(nil).IsFinished())

	e := &AlarmEvent{EventID: "e1", StartAt: time.Now()}
	require.False(t, e.IsFinished())

	end := time.Now()
	e.EndAt = &end
	require.True(t, e.IsFinished())
}

// TestClone verifies Clone deep-copies optional timestamps and handles nil safely.
func TestClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*AlarmEvent)(nil).Clone())

	end := time.Now().UTC().Truncate(time.Second)
	e := &AlarmEvent{
		EventID:     "e1",
		UserID:      "u-1",
		UserName:    "mapler",
		StartAt:     end.Add(-time.Hour),
		EndAt:       &end,
		SnoozeTimes: 2,
	}

	c := e.Clone()
	require.Equal(t, e, c)
	require.NotSame(t, e, c)
	require.NotSame(t, e.EndAt, c.EndAt)

	// Mutating the clone leaves the original untouched.
	*c.EndAt = c.EndAt.Add(time.Minute)
	require.Equal(t, end, *e.EndAt)
}

// TestSummary checks both the finished and unfinished renderings.
func TestSummary(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)
	e := &AlarmEvent{EventID: "e1", UserName: "mapler", StartAt: start}
	require.Contains(t, e.Summary(), "still asleep")

	end := start.Add(20 * time.Minute)
	e.EndAt = &end
	e.SnoozeTimes = 2

	got := e.Summary()
	require.Contains(t, got, "mapler got up at")
	require.Contains(t, got, "2 time(s)")
}
