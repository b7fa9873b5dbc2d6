package ringtone

import (
	"context"
	"sync"

	"github.com/mapler/socialclock/internal/logger"
)

// Player controls ringtone playback. At most one ringtone plays at a time:
// playing again restarts playback, stopping is idempotent. The player is an
// owned handle passed to the orchestrator, never ambient global state.
type Player interface {
	// PlayRingtone starts playback.
	PlayRingtone(ctx context.Context) error
	// StopRingtone stops playback if any is in progress.
	StopRingtone(ctx context.Context)
}

// Silent is a Player that only logs, used for headless deployments and tests.
type Silent struct {
	mu      sync.Mutex
	playing bool
}

// NewSilent creates a silent player.
func NewSilent() *Silent {
	return &Silent{}
}

// PlayRingtone marks the ringtone as playing.
func (s *Silent) PlayRingtone(ctx context.Context) error {
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()

	logger.Debug(ctx, "Silent ringtone started")

	return nil
}

// StopRingtone marks the ringtone as stopped.
func (s *Silent) StopRingtone(ctx context.Context) {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()

	logger.Debug(ctx, "Silent ringtone stopped")
}

// IsPlaying reports playback state; used by tests.
func (s *Silent) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.playing
}
