// Package ringtone plays the alarm sound.
//
// WAVPlayer loops a WAV clip through the system audio device via oto;
// Silent replaces it for headless deployments and tests. Both guarantee at
// most one ringtone playing at a time.
package ringtone
