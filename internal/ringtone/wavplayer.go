package ringtone

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/mapler/socialclock/internal/logger"
)

// playPollInterval is how often the playback goroutine checks for a stop request.
const playPollInterval = 50 * time.Millisecond

// WAVPlayer plays a WAV file through the system audio device.
// The oto context is created once: audio hardware setup is process-wide.
type WAVPlayer struct {
	format    *wavFormat
	audioData []byte

	// ctxOnce guards one-time audio context initialization.
	ctxOnce  sync.Once
	audioCtx *oto.Context
	ctxErr   error

	// mu guards the stop channel of the active playback.
	mu   sync.Mutex
	stop chan struct{}
}

// NewWAVPlayer loads and validates the ringtone file.
func NewWAVPlayer(path string) (*WAVPlayer, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read ringtone file: %w", err)
	}

	format, audioData, err := parseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("parse ringtone file: %w", err)
	}

	return &WAVPlayer{
		format:    format,
		audioData: audioData,
	}, nil
}

// PlayRingtone starts looped playback, replacing any playback in progress.
func (w *WAVPlayer) PlayRingtone(ctx context.Context) error {
	w.ctxOnce.Do(func() {
		audioCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   w.format.SampleRate,
			ChannelCount: w.format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			w.ctxErr = fmt.Errorf("initialise audio context: %w", err)

			return
		}

		// Wait for the audio device to be ready.
		<-ready
		w.audioCtx = audioCtx
	})

	if w.ctxErr != nil {
		return w.ctxErr
	}

	w.StopRingtone(ctx)

	stop := make(chan struct{})

	w.mu.Lock()
	w.stop = stop
	w.mu.Unlock()

	go w.loop(ctx, stop)

	return nil
}

// StopRingtone stops playback if any is in progress. Idempotent.
func (w *WAVPlayer) StopRingtone(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop != nil {
		close(w.stop)
		w.stop = nil

		logger.Debug(ctx, "Ringtone stopped")
	}
}

// loop replays the clip until stopped.
func (w *WAVPlayer) loop(ctx context.Context, stop chan struct{}) {
	for {
		player := w.audioCtx.NewPlayer(bytes.NewReader(w.audioData))
		player.Play()

		for player.IsPlaying() {
			select {
			case <-stop:
				_ = player.Close()

				return
			case <-time.After(playPollInterval):
			}
		}

		if err := player.Close(); err != nil {
			logger.WarnKV(ctx, "Close audio player failed", "error", err)
		}

		select {
		case <-stop:
			return
		default:
		}
	}
}
