package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fireRecorder collects firings for assertions.
type fireRecorder struct {
	mu    sync.Mutex
	fired []string
	done  chan struct{}
}

func newFireRecorder() *fireRecorder {
	return &fireRecorder{done: make(chan struct{}, 8)}
}

func (r *fireRecorder) fire(_ context.Context, eventID string, kind Kind) {
	r.mu.Lock()
	r.fired = append(r.fired, eventID+"/"+string(kind))
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *fireRecorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.fired...)
}

// TestTimer_FiresOnce verifies an armed alarm fires with its id and kind.
func TestTimer_FiresOnce(t *testing.T) {
	t.Parallel()

	rec := newFireRecorder()
	timer := NewTimer(rec.fire)

	require.NoError(t, timer.SetAlarm(context.Background(), "e1", KindNormal, time.Now().Add(10*time.Millisecond)))

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("alarm did not fire")
	}

	require.Equal(t, []string{"e1/normal"}, rec.events())
}

// TestTimer_RearmReplacesPending ensures only the latest armed alarm fires.
func TestTimer_RearmReplacesPending(t *testing.T) {
	t.Parallel()

	rec := newFireRecorder()
	timer := NewTimer(rec.fire)
	ctx := context.Background()

	require.NoError(t, timer.SetAlarm(ctx, "stale", KindNormal, time.Now().Add(30*time.Millisecond)))
	require.NoError(t, timer.SetAlarm(ctx, "current", KindSnooze, time.Now().Add(60*time.Millisecond)))

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("alarm did not fire")
	}

	// Give the stale timer a chance to misfire before asserting.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"current/snooze"}, rec.events())
}

// TestTimer_CancelDisarms verifies a canceled alarm never fires.
func TestTimer_CancelDisarms(t *testing.T) {
	t.Parallel()

	rec := newFireRecorder()
	timer := NewTimer(rec.fire)
	ctx := context.Background()

	require.NoError(t, timer.SetAlarm(ctx, "e1", KindNormal, time.Now().Add(20*time.Millisecond)))
	require.NoError(t, timer.CancelAlarm(ctx))

	select {
	case <-rec.done:
		t.Fatal("canceled alarm fired")
	case <-time.After(100 * time.Millisecond):
	}

	require.Empty(t, rec.events())
}
